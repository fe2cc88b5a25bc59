package types

// EntryPoint names one of the fixed, consensus-critical Wasm exports a
// contract may implement (spec §4.7).
type EntryPoint string

const (
	EntryInstantiate       EntryPoint = "instantiate"
	EntryExecute           EntryPoint = "execute"
	EntryMigrate           EntryPoint = "migrate"
	EntrySudo              EntryPoint = "sudo"
	EntryReply             EntryPoint = "reply"
	EntryQuery             EntryPoint = "query"
	EntryIBCChannelOpen    EntryPoint = "ibc_channel_open"
	EntryIBCChannelConnect EntryPoint = "ibc_channel_connect"
	EntryIBCChannelClose   EntryPoint = "ibc_channel_close"
	EntryIBCPacketReceive  EntryPoint = "ibc_packet_receive"
	EntryIBCPacketAck      EntryPoint = "ibc_packet_ack"
	EntryIBCPacketTimeout  EntryPoint = "ibc_packet_timeout"
)

// SignatureClass is the input-shape an entry point is called with (spec
// §4.7's table).
type SignatureClass int

const (
	// ClassEnvInfoMsg entry points take env JSON, info JSON, msg JSON.
	ClassEnvInfoMsg SignatureClass = iota
	// ClassEnvMsg entry points take env JSON, msg JSON.
	ClassEnvMsg
	// ClassEnvOnly entry points take only env JSON.
	ClassEnvOnly
)

// entryPointClasses is the fixed table mapping export name to signature
// class and required-exports check, exactly spec §4.7's table.
var entryPointClasses = map[EntryPoint]SignatureClass{
	EntryInstantiate:      ClassEnvInfoMsg,
	EntryExecute:          ClassEnvInfoMsg,
	EntryMigrate:          ClassEnvInfoMsg,
	EntrySudo:             ClassEnvInfoMsg,
	EntryReply:            ClassEnvInfoMsg,
	EntryIBCPacketReceive: ClassEnvInfoMsg,
	EntryIBCPacketAck:     ClassEnvInfoMsg,
	EntryIBCPacketTimeout: ClassEnvInfoMsg,

	EntryQuery:             ClassEnvMsg,
	EntryIBCChannelOpen:    ClassEnvMsg,
	EntryIBCChannelConnect: ClassEnvMsg,
	EntryIBCChannelClose:   ClassEnvMsg,
}

// ClassOf returns the signature class for a known entry point and whether
// it is recognized at all.
func ClassOf(e EntryPoint) (SignatureClass, bool) {
	c, ok := entryPointClasses[e]
	return c, ok
}

// ReadOnly reports whether calls to this entry point must run with
// storage_readonly = true (spec §3 Environment): true for query and
// ibc_channel_open, false for every state-mutating entry point.
func ReadOnly(e EntryPoint) bool {
	return e == EntryQuery || e == EntryIBCChannelOpen
}

// ModuleMetadata is the "small sidecar" recorded alongside a compiled
// artifact (spec §3 "Compiled Module"): the capabilities it declared it
// needs, the entry points it exports, and the original Wasm size — cheap
// facts the cache can answer without re-parsing or re-compiling the
// module.
type ModuleMetadata struct {
	Checksum             Checksum
	RequiredCapabilities CapabilitySet
	EntryPoints          []EntryPoint
	OriginalSize         uint32
}

// HasEntryPoint reports whether the module declares the given entry point.
func (m ModuleMetadata) HasEntryPoint(e EntryPoint) bool {
	for _, have := range m.EntryPoints {
		if have == e {
			return true
		}
	}
	return false
}
