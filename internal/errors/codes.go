// Package errors provides centralized error code definitions for the
// Ditto front-end. Codes are namespaced by phase, forming a closed set.
package errors

const (
	// Parsing (external to the core, but reported through the same Report shape).
	ParseUnexpectedToken = "PAR001"
	ParseUnterminated     = "PAR002"
	ParseInvalidLiteral   = "PAR003"

	// Name resolution.
	UnknownVariable        = "IMP001"
	UnknownConstructor     = "IMP002"
	UnknownTypeConstructor = "IMP003"
	UnknownTypeVariable    = "IMP004"
	UnknownValueImport     = "IMP005"
	UnknownTypeImport      = "IMP006"
	UnknownValueExport     = "IMP007"
	UnknownTypeExport      = "IMP008"
	PackageNotFound        = "IMP009"
	ModuleNotFound         = "IMP010"
	NoVisibleConstructors  = "IMP011"

	// Duplication.
	DuplicateImportLine              = "IMP020"
	DuplicateImportModule            = "IMP021"
	DuplicateValueDeclaration        = "IMP022"
	DuplicateTypeDeclaration         = "IMP023"
	DuplicateTypeConstructor         = "IMP024"
	DuplicateTypeDeclarationVariable = "IMP025"
	DuplicateFunctionBinder          = "TYC020"
	DuplicatePatternBinder           = "TYC021"
	ReboundImportType                = "IMP026"
	ReboundImportConstructor         = "IMP027"
	ReboundImportValue               = "IMP028"

	// Shape.
	NotAFunction               = "TYC001"
	TypeNotAFunction           = "TYC002"
	ArgumentLengthMismatch     = "TYC003"
	TypeArgumentLengthMismatch = "TYC004"

	// Unification.
	TypesNotEqual = "TYC010"
	KindsNotEqual = "KND001"
	InfiniteType  = "TYC011"
	InfiniteKind  = "KND002"

	// Patterns.
	MatchNotExhaustive    = "COV001"
	RedundantMatchPattern = "COV002"
	MalformedPattern      = "COV003"

	// Build driver / manifest.
	ManifestParseError = "BLD001"
	BuildLockHeld      = "BLD002"
	BuildCycle         = "BLD003"
)

// ErrorInfo documents one error code's phase and the plain-English
// category it belongs to in the closed taxonomy.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry is the full table of known codes.
var ErrorRegistry = map[string]ErrorInfo{
	UnknownVariable:        {UnknownVariable, "typecheck", "name-resolution", "reference to an undeclared value"},
	UnknownConstructor:     {UnknownConstructor, "typecheck", "name-resolution", "reference to an undeclared constructor"},
	UnknownTypeConstructor: {UnknownTypeConstructor, "kindcheck", "name-resolution", "reference to an undeclared type"},
	UnknownTypeVariable:    {UnknownTypeVariable, "kindcheck", "name-resolution", "reference to an undeclared type variable"},
	UnknownValueImport:     {UnknownValueImport, "import", "name-resolution", "unqualified import names a value the module doesn't export"},
	UnknownTypeImport:      {UnknownTypeImport, "import", "name-resolution", "unqualified import names a type the module doesn't export"},
	UnknownValueExport:     {UnknownValueExport, "import", "name-resolution", "export list names an undeclared value"},
	UnknownTypeExport:      {UnknownTypeExport, "import", "name-resolution", "export list names an undeclared type"},
	PackageNotFound:        {PackageNotFound, "import", "name-resolution", "import names an unknown package"},
	ModuleNotFound:         {ModuleNotFound, "import", "name-resolution", "import names an unknown module"},
	NoVisibleConstructors:  {NoVisibleConstructors, "import", "name-resolution", "Type(..) import resolves to zero constructors"},

	DuplicateImportLine:              {DuplicateImportLine, "import", "duplication", "the same (package, module) pair is imported twice"},
	DuplicateImportModule:            {DuplicateImportModule, "import", "duplication", "two imports register the same alias"},
	DuplicateValueDeclaration:        {DuplicateValueDeclaration, "typecheck", "duplication", "a value name is declared twice at module scope"},
	DuplicateTypeDeclaration:         {DuplicateTypeDeclaration, "kindcheck", "duplication", "a type name is declared twice at module scope"},
	DuplicateTypeConstructor:         {DuplicateTypeConstructor, "kindcheck", "duplication", "a constructor name is declared twice within a module"},
	DuplicateTypeDeclarationVariable: {DuplicateTypeDeclarationVariable, "kindcheck", "duplication", "a type declaration repeats a type variable"},
	DuplicateFunctionBinder:          {DuplicateFunctionBinder, "typecheck", "duplication", "a function literal repeats a binder name"},
	DuplicatePatternBinder:           {DuplicatePatternBinder, "coverage", "duplication", "a pattern repeats a binder name"},
	ReboundImportType:                {ReboundImportType, "import", "duplication", "an alias import shadows an already-installed type"},
	ReboundImportConstructor:         {ReboundImportConstructor, "import", "duplication", "an alias import shadows an already-installed constructor"},
	ReboundImportValue:               {ReboundImportValue, "import", "duplication", "an alias import shadows an already-installed value"},

	NotAFunction:               {NotAFunction, "typecheck", "shape", "a call target is not a function"},
	TypeNotAFunction:           {TypeNotAFunction, "kindcheck", "shape", "a type application target has no parameters"},
	ArgumentLengthMismatch:     {ArgumentLengthMismatch, "typecheck", "shape", "call arity does not match the function's parameter count"},
	TypeArgumentLengthMismatch: {TypeArgumentLengthMismatch, "kindcheck", "shape", "type application arity does not match the constructor's arity"},

	TypesNotEqual: {TypesNotEqual, "typecheck", "unification", "two types could not be unified"},
	KindsNotEqual: {KindsNotEqual, "kindcheck", "unification", "two kinds could not be unified"},
	InfiniteType:  {InfiniteType, "typecheck", "unification", "occurs check failed: a type variable occurs in its own substitution"},
	InfiniteKind:  {InfiniteKind, "kindcheck", "unification", "occurs check failed for a kind variable"},

	MatchNotExhaustive:    {MatchNotExhaustive, "coverage", "patterns", "a match expression does not cover every constructor"},
	RedundantMatchPattern: {RedundantMatchPattern, "coverage", "patterns", "a match arm can never be reached"},
	MalformedPattern:      {MalformedPattern, "coverage", "patterns", "internal error: ideal/clause arity mismatch"},

	ManifestParseError: {ManifestParseError, "build", "manifest", "ditto.toml could not be parsed"},
	BuildLockHeld:      {BuildLockHeld, "build", "concurrency", "the build directory lock is held by another invocation"},
	BuildCycle:         {BuildCycle, "build", "scheduling", "the module dependency graph contains a cycle"},
}

// GetErrorInfo looks up a code's registry entry.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := ErrorRegistry[code]
	return info, ok
}

func IsNameResolutionError(code string) bool {
	info, ok := ErrorRegistry[code]
	return ok && info.Category == "name-resolution"
}

func IsUnificationError(code string) bool {
	info, ok := ErrorRegistry[code]
	return ok && info.Category == "unification"
}

func IsPatternError(code string) bool {
	info, ok := ErrorRegistry[code]
	return ok && info.Category == "patterns"
}
