package config

import (
	"flag"
)

const (
	defaultDBDNS       = ""
	defaultSupplierURL = "https://api.sms-activate.org/stubs/handler_api.php"
)

type Flags struct {
	address string

	dbDNS       string
	supplierURL string
	frontendURL string
	catalogPath string
	logLevel    string
}

func (flags *Flags) Parse(args []string) error {
	fs := flag.NewFlagSet("quicksms", flag.ContinueOnError)

	fs.StringVar(&flags.address, "a", ":8080", "Address and port to run server")

	fs.StringVar(&flags.dbDNS, "d", defaultDBDNS, "db dns")
	fs.StringVar(&flags.supplierURL, "s", defaultSupplierURL, "supplier api url")
	fs.StringVar(&flags.frontendURL, "f", "", "chat front-end callback url")
	fs.StringVar(&flags.catalogPath, "c", "", "catalog yaml file")
	fs.StringVar(&flags.logLevel, "l", "info", "log level")

	return fs.Parse(args)
}
