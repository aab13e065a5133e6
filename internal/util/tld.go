package util

// KnownTwoPartTLDs lists public suffixes that span two labels.
var KnownTwoPartTLDs = map[string]bool{
	"co.uk": true, "com.au": true, "co.jp": true, "co.nz": true, "com.br": true,
	"org.uk": true, "gov.uk": true, "ac.uk": true, "com.cn": true, "net.cn": true,
	"org.cn": true, "co.za": true, "com.es": true, "com.mx": true, "com.sg": true,
	"co.in": true, "net.in": true, "org.in": true, "firm.in": true, "gen.in": true,
	"ltd.uk": true, "plc.uk": true, "net.au": true, "org.au": true,
}
