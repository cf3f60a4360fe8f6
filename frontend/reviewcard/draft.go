package reviewcard

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Field string

const (
	FieldRating  Field = "rating"
	FieldTitle   Field = "title"
	FieldComment Field = "comment"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Draft is the edit buffer. Lengths are counted in runes.
type Draft struct {
	Rating  int    `validate:"min=1,max=5"`
	Title   string `validate:"notblank,min=5,max=50"`
	Comment string `validate:"notblank,min=10,max=500"`
}

var feedback = map[Field]string{
	FieldRating:  "Please provide a rating between 1 and 5.",
	FieldTitle:   "Please provide a valid title.",
	FieldComment: "Please provide a valid comment.",
}

var structFields = map[string]Field{
	"Rating":  FieldRating,
	"Title":   FieldTitle,
	"Comment": FieldComment,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldErrors carries the inline feedback text for each invalid draft field.
type FieldErrors map[Field]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// normalized is the draft as the server stores it: title and comment trimmed.
func (d Draft) normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Comment = strings.TrimSpace(d.Comment)
	return d
}

// Validate checks the trimmed draft and returns nil or a FieldErrors.
func (d Draft) Validate() error {
	err := validate.Struct(d.normalized())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, e := range verrs {
		if f, ok := structFields[e.StructField()]; ok {
			out[f] = feedback[f]
		}
	}
	return out
}

// diff lists the trimmed draft fields that differ from r.
func (d Draft) diff(r Record) Changes {
	d = d.normalized()
	var c Changes
	if d.Rating != r.Rating {
		rating := d.Rating
		c.Rating = &rating
	}
	if d.Title != r.Title {
		title := d.Title
		c.Title = &title
	}
	if d.Comment != r.Comment {
		comment := d.Comment
		c.Comment = &comment
	}
	return c
}

func draftOf(r Record) Draft {
	return Draft{Rating: r.Rating, Title: r.Title, Comment: r.Comment}
}
