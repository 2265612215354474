package domain

// Reserved document keys shared by every content type.
const (
	KeyUUID     = "uuid"
	KeyCType    = "ctype"
	KeyTitle    = "systitle"
	KeyState    = "state"
	KeySlug     = "slug"
	KeyI18n     = "i18n"
	KeyCreated  = "created"
	KeyModified = "modified"
)

// Direction names the transform direction applied by a pipeline pass.
type Direction string

const (
	DirectionPresent  Direction = "present"
	DirectionStore    Direction = "store"
	DirectionPostSave Direction = "post_save"
	DirectionFind     Direction = "find"
)

// Mode selects how presented values are shaped.
type Mode string

const (
	// ModeEdit keeps values editable (no display-only transforms).
	ModeEdit Mode = "edit"
	// ModeView applies display transforms and renders fragments.
	ModeView Mode = "view"
)
