package domain

// NameGroupState is the exclusivity state of all records sharing one owner
// name inside a zone.
type NameGroupState int

const (
	// GroupEmpty has neither address nor CNAME records.
	GroupEmpty NameGroupState = iota
	// GroupAddresses has one or more A/AAAA records and no CNAME.
	GroupAddresses
	// GroupCNAME has a CNAME record.
	GroupCNAME
)

func (s NameGroupState) String() string {
	switch s {
	case GroupAddresses:
		return "A_AAAA_SET"
	case GroupCNAME:
		return "CNAME_SET"
	}
	return "EMPTY"
}

// ExclusiveType reports whether t takes part in the CNAME exclusivity rule.
func ExclusiveType(t RecordType) bool {
	return t == TypeA || t == TypeAAAA || t == TypeCNAME
}

// GroupState folds the types stored under one owner name into a state. Types
// outside the exclusivity rule are ignored.
func GroupState(existing []RecordType) NameGroupState {
	state := GroupEmpty
	for _, t := range existing {
		switch t {
		case TypeCNAME:
			return GroupCNAME
		case TypeA, TypeAAAA:
			state = GroupAddresses
		}
	}
	return state
}

// CheckRecordConflict validates adding a record of type candidate under name
// to a group already holding existing. On update, existing must not include
// the record being updated.
func CheckRecordConflict(name string, candidate RecordType, existing []RecordType) error {
	if !ExclusiveType(candidate) {
		return nil
	}
	state := GroupState(existing)
	allowed := false
	switch candidate {
	case TypeA, TypeAAAA:
		allowed = state != GroupCNAME
	case TypeCNAME:
		allowed = state == GroupEmpty
	}
	if allowed {
		return nil
	}
	conflicting := make([]RecordType, 0, len(existing))
	for _, t := range existing {
		if ExclusiveType(t) {
			conflicting = append(conflicting, t)
		}
	}
	return &ConflictError{Name: name, Type: candidate, Existing: conflicting}
}
