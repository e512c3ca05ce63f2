package contact

// FindDuplicate reports the first field, in DuplicateOrder, on which
// candidate collides with a record in existing. Records addressed by
// exclude are skipped, which is how an edit avoids colliding with itself.
func FindDuplicate(existing []Contact, candidate Contact, exclude *Contact) (Field, bool) {
	field, idx := findDuplicate(existing, candidate, exclude)
	return field, idx >= 0
}

// findDuplicate returns the colliding field and the index of the record it
// collides with, or -1. A name collision anywhere outranks a phone
// collision on an earlier record.
func findDuplicate(existing []Contact, candidate Contact, exclude *Contact) (Field, int) {
	var skip *Identity
	if exclude != nil {
		id := exclude.Identity()
		skip = &id
	}

	for _, f := range DuplicateOrder {
		for i, c := range existing {
			if skip != nil && skip.Is(c) {
				continue
			}
			if collides(f, c, candidate) {
				return f, i
			}
		}
	}
	return "", -1
}

func collides(f Field, a, b Contact) bool {
	switch f {
	case FieldName:
		return equalFold(a.Name, b.Name)
	case FieldPhone:
		return a.Phone == b.Phone
	case FieldEmail:
		return equalFold(a.Email, b.Email)
	}
	return false
}
