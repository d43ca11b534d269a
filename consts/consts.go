package consts

const (
	UA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	// TIME_FORMAT is the XMLTV programme timestamp layout.
	TIME_FORMAT = "20060102150405 -0700"

	INPUT_FILE  = "urls.txt"
	OUTPUT_FILE = "EPG.xml"
	LOG_FILE    = "EPG.log"

	GENERATOR_NAME        = "EPG"
	GENERATOR_TIME_FORMAT = "02/01/2006 15:04"
)
