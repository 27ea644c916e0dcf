package services

import (
	"fmt"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/schema"
)

// CommentSpec is a comment submitted inline with asset properties.
type CommentSpec struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

// PropValue holds the normalized values of one request property. All is set
// when a delete request used the empty-string sentinel, meaning every value
// of the property should go.
type PropValue struct {
	Values   []string
	Comments []CommentSpec
	All      bool
}

// Props maps request property names to normalized values.
type Props map[string]PropValue

// First returns the first value of a property, or "".
func (p Props) First(name string) string {
	if v, ok := p[name]; ok && len(v.Values) > 0 {
		return v.Values[0]
	}
	return ""
}

// Add appends values to a property, promoting it to a list.
func (p Props) Add(name string, values ...string) {
	v := p[name]
	v.Values = append(v.Values, values...)
	p[name] = v
}

// ParseProps normalizes a decoded JSON property map: scalars are promoted to
// single-element lists, the empty string becomes the delete-all sentinel, and
// comment objects are captured as CommentSpec values.
func ParseProps(raw map[string]any) (Props, error) {
	props := make(Props, len(raw))
	for name, value := range raw {
		var pv PropValue
		items, ok := value.([]any)
		if !ok {
			items = []any{value}
		}
		for _, item := range items {
			switch v := item.(type) {
			case string:
				if v == "" {
					pv.All = true
					continue
				}
				pv.Values = append(pv.Values, v)
			case map[string]any:
				if name != schema.PropComment {
					return nil, apperror.BadRequest("property %s does not accept object values", name)
				}
				spec := CommentSpec{}
				if cat, ok := v["category"].(string); ok {
					spec.Category = cat
				}
				if content, ok := v["content"].(string); ok {
					spec.Content = content
				}
				if spec.Content == "" {
					return nil, apperror.BadRequest("comment for property %s has no content", name)
				}
				pv.Comments = append(pv.Comments, spec)
			default:
				pv.Values = append(pv.Values, fmt.Sprintf("%v", item))
			}
		}
		props[name] = pv
	}
	return props, nil
}
