package v1

const (
	// MinTitleLength and MaxTitleLength bound project titles in bytes.
	MinTitleLength = 2
	MaxTitleLength = 40

	// DefaultProjectListLimit applies when a list request passes limit=0.
	DefaultProjectListLimit = 50
	// MaxProjectListLimit is the largest accepted page size.
	MaxProjectListLimit = 50
)

// TitleLengthDetail is the detail attached to InvalidInput for a bad title.
const TitleLengthDetail = "lenght of `title` should be in range 2..=40"

// ProjectInfo is a project as returned by the API.
type ProjectInfo struct {
	ID          int64     `json:"id"`
	Ty          ProjectTy `json:"ty"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	AuthorID    int64     `json:"author_id"`
}

// ValidTitle reports whether the title length is within bounds.
func ValidTitle(title string) bool {
	n := len(title)
	return n >= MinTitleLength && n <= MaxTitleLength
}
