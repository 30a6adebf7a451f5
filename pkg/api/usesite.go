package api

// UseType tags the nature of a reference from one element to another.
type UseType int

// Use types recognized by the bundled analyzers.
const (
	// UseAnnotates marks an annotation applied to the used element.
	UseAnnotates UseType = iota
	// UseFieldType marks the used element appearing as a field type.
	UseFieldType
	// UseParameterType marks the used element appearing as a parameter type.
	UseParameterType
	// UseReturnType marks the used element appearing as a return type.
	UseReturnType
	// UseThrows marks the used element appearing as a thrown type.
	UseThrows
	// UseExtends marks the used element being extended or implemented.
	UseExtends
	// UseContains marks containment of the used element.
	UseContains
)

// String returns the lowercase tag name of the use type.
func (u UseType) String() string {
	switch u {
	case UseAnnotates:
		return "annotates"
	case UseFieldType:
		return "fieldType"
	case UseParameterType:
		return "parameterType"
	case UseReturnType:
		return "returnType"
	case UseThrows:
		return "throws"
	case UseExtends:
		return "extends"
	case UseContains:
		return "contains"
	}

	return "unknown"
}

// MovesToAPI reports whether this kind of use propagates API membership
// transitively: an element used this way by an API element becomes part of
// the API itself.
func (u UseType) MovesToAPI() bool {
	switch u {
	case UseFieldType, UseParameterType, UseReturnType, UseThrows, UseExtends, UseContains:
		return true
	case UseAnnotates:
		return false
	}

	return false
}

// UseSite records that Site refers to some element with the tagged use
// type. Use-sites form a directed graph over elements; cycles are legal
// and traversals must tolerate them.
type UseSite struct {
	// Site is the referring element.
	Site Element
	// Use tags the nature of the reference.
	Use UseType
}
