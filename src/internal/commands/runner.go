package commands

// Runner is the contract every subcommand implements.
type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

// AppContext carries the global flags shared by all commands.
type AppContext struct {
	// ConfigPath overrides the default config location when non-empty.
	ConfigPath string

	// Resolver overrides the DNS server from config and system settings.
	Resolver string

	// Threads bounds concurrent DNS lookups in the scan pipeline.
	Threads int

	// AppendCDN emits CDN hosts instead of dropping them.
	AppendCDN bool

	Verbose bool
}
