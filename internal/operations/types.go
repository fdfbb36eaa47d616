package operations

// Routine identifiers
const (
	RoutineIDSeawater = "seawater"
	RoutineIDBubbler  = "aerosol_bubbler"
	RoutineIDCoriolis = "aerosol_coriolis"
)

// Routine names
const (
	RoutineNameSeawater = "Seawater IN Calculation"
	RoutineNameBubbler  = "Aerosol Bubbler IN Calculation"
	RoutineNameCoriolis = "Aerosol Coriolis IN Calculation"
)

// Pipeline stage identifiers, in execution order
const (
	StageIDLocate   = "locate"
	StageIDParse    = "parse"
	StageIDTemplate = "template"
	StageIDReshape  = "reshape"
	StageIDBlanks   = "blanks"
	StageIDEmit     = "emit"
)

// StageIDs lists the standard pipeline stages in execution order
var StageIDs = []string{
	StageIDLocate,
	StageIDParse,
	StageIDTemplate,
	StageIDReshape,
	StageIDBlanks,
	StageIDEmit,
}

// AnyLocation registers a routine for every location of a sample type
const AnyLocation = "*"
