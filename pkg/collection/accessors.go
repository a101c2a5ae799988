package collection

import "fmt"

// FindField returns the value of the first field named name. The second
// return reports whether a match was found; an empty or nil slice is not an
// error.
func FindField(fields []Field, name string) (any, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// FindString is FindField with the value flattened to its string form.
// Absent fields and nil values yield "".
func FindString(fields []Field, name string) string {
	value, ok := FindField(fields, name)
	if !ok || value == nil {
		return ""
	}
	if s, isString := value.(string); isString {
		return s
	}
	return fmt.Sprint(value)
}

// SetField updates the first field named name in place. A nil value removes
// the field entirely, preserving the relative order of the remaining fields;
// this is how an absent attachment is stripped before submission. Missing
// names are a no-op.
func SetField(fields *[]Field, name string, value any) {
	if fields == nil {
		return
	}
	for i := range *fields {
		if (*fields)[i].Name != name {
			continue
		}
		if value != nil {
			(*fields)[i].Value = value
		} else {
			*fields = append((*fields)[:i], (*fields)[i+1:]...)
		}
		return
	}
}

// FindLink returns the href of the first link named name.
func FindLink(links []Link, name string) (string, bool) {
	for _, link := range links {
		if link.Name == name {
			return link.Href, true
		}
	}
	return "", false
}
