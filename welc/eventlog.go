package welc

// Log modes as reported by the event-log subsystem.
const (
	Circular   = "Circular"
	AutoBackup = "AutoBackup"
	Retain     = "Retain"
)

// Log types.
const (
	LogTypeAdministrative = "Administrative"
	LogTypeOperational    = "Operational"
	LogTypeAnalytical     = "Analytical"
	LogTypeDebug          = "Debug"
)

// Log isolation.
const (
	IsolationApplication = "Application"
	IsolationSystem      = "System"
	IsolationCustom      = "Custom"
)

// EventLogConfiguration mirrors the configuration entry the OS keeps for a
// channel.
type EventLogConfiguration struct {
	LogName            string
	LogType            string
	LogIsolation       string
	IsEnabled          bool
	IsClassicLog       bool
	SecurityDescriptor string
	LogFilePath        string
	MaximumSizeInBytes int64
	LogMode            string
	OwningProviderName string
	ProviderNames      []string

	ProviderLevel                  *uint32
	ProviderKeywords               *uint64
	ProviderBufferSize             *uint32
	ProviderMinimumNumberOfBuffers *uint32
	ProviderMaximumNumberOfBuffers *uint32
	ProviderLatency                *uint32
	ProviderControlGuid            string
}

// ProviderMetadata mirrors the metadata the OS publishes for a registered
// provider.
type ProviderMetadata struct {
	Name              string
	Id                string
	MessageFilePath   string
	ResourceFilePath  string
	ParameterFilePath string
	HelpLink          string
	DisplayName       string
	LogLinks          []EventLogLink
	Levels            []EventLevel
	Tasks             []EventTask
	Opcodes           []EventOpcode
	Keywords          []EventKeyword
}

// EventLogLink is a channel a provider writes to.
type EventLogLink struct {
	LogName     string
	IsImported  bool
	DisplayName string
}

type EventLevel struct {
	Name        string
	Value       uint32
	DisplayName string
}

type EventTask struct {
	Name        string
	Value       uint32
	EventGuid   string
	DisplayName string
}

type EventOpcode struct {
	Name        string
	Value       uint32
	DisplayName string
}

type EventKeyword struct {
	Name        string
	Value       uint64
	DisplayName string
}
