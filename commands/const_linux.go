package commands

const (
	_etc = "/usr/local/etc/uhppoted"
	_var = "/usr/local/var/uhppoted"

	DEFAULT_WORKDIR     = _var + "/sheetsdb"
	DEFAULT_CREDENTIALS = _etc + "/sheetsdb/.google/credentials.json"
)
