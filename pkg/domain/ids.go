// Package domain holds the identifier primitives shared by every casevault
// domain. Each entity gets its own UUID-backed type so a CaseID can never be
// passed where a UserID is expected.
package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	dErrors "casevault/pkg/domain-errors"
)

type (
	UserID          uuid.UUID
	CaseID          uuid.UUID
	CaseRequestID   uuid.UUID
	AccessRequestID uuid.UUID
	EvidenceID      uuid.UUID
	ActivityID      uuid.UUID
)

// maxIDLength bounds input before it reaches uuid.Parse. The longest accepted
// form is the 45 character urn:uuid: prefix variant.
const maxIDLength = 45

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" || strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, kind+" is required")
	}
	if len(s) > maxIDLength || !utf8.ValidString(s) {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+kind)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+kind)
	}
	return parsed, nil
}

// ParseUserID parses a user identifier at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID("user id", s)
	return UserID(u), err
}

// ParseCaseID parses a case identifier at a trust boundary.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID("case id", s)
	return CaseID(u), err
}

// ParseCaseRequestID parses a case creation request identifier.
func ParseCaseRequestID(s string) (CaseRequestID, error) {
	u, err := parseUUID("case request id", s)
	return CaseRequestID(u), err
}

// ParseAccessRequestID parses an access request identifier.
func ParseAccessRequestID(s string) (AccessRequestID, error) {
	u, err := parseUUID("access request id", s)
	return AccessRequestID(u), err
}

// ParseEvidenceID parses an evidence identifier.
func ParseEvidenceID(s string) (EvidenceID, error) {
	u, err := parseUUID("evidence id", s)
	return EvidenceID(u), err
}

// ParseActivityID parses an activity log identifier.
func ParseActivityID(s string) (ActivityID, error) {
	u, err := parseUUID("activity id", s)
	return ActivityID(u), err
}

func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id CaseID) String() string          { return uuid.UUID(id).String() }
func (id CaseRequestID) String() string   { return uuid.UUID(id).String() }
func (id AccessRequestID) String() string { return uuid.UUID(id).String() }
func (id EvidenceID) String() string      { return uuid.UUID(id).String() }
func (id ActivityID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CaseID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id CaseRequestID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AccessRequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EvidenceID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ActivityID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// JSON encodes IDs as their canonical string form.

func (id UserID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id CaseID) MarshalText() ([]byte, error)          { return uuid.UUID(id).MarshalText() }
func (id CaseRequestID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }
func (id AccessRequestID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id EvidenceID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id ActivityID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CaseID) UnmarshalText(b []byte) error {
	parsed, err := ParseCaseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CaseRequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseCaseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *AccessRequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccessRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *EvidenceID) UnmarshalText(b []byte) error {
	parsed, err := ParseEvidenceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ActivityID) UnmarshalText(b []byte) error {
	parsed, err := ParseActivityID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewUserID and friends mint fresh random identifiers for new records.
func NewUserID() UserID                   { return UserID(uuid.New()) }
func NewCaseID() CaseID                   { return CaseID(uuid.New()) }
func NewCaseRequestID() CaseRequestID     { return CaseRequestID(uuid.New()) }
func NewAccessRequestID() AccessRequestID { return AccessRequestID(uuid.New()) }
func NewEvidenceID() EvidenceID           { return EvidenceID(uuid.New()) }
func NewActivityID() ActivityID           { return ActivityID(uuid.New()) }
