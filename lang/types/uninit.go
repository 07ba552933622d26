package types

// UninitType is the type of the machine-internal marker held by a declared
// variable before its first assignment. Its only legal value is Uninit. It is
// never constructable from a source literal, and its type name is the empty
// string so that a type query on such a variable yields "".
type UninitType byte

const Uninit = UninitType(0)

// Uninit is a Value.
var _ Value = Uninit

func (UninitType) String() string { return "uninit" }
func (UninitType) Type() string   { return "" }
