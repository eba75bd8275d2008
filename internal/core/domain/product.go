package domain

import "slices"

// ProductStatus is the moderation state of a product. Pending is stored as an
// absent field.
type ProductStatus string

const (
	StatusPending  ProductStatus = ""
	StatusAccepted ProductStatus = "accepted"
	StatusRejected ProductStatus = "rejected"
)

// Product is a user-submitted catalog entry.
//
// Votes, IsFeatured and Reported are nil until they are first set. Attributes
// holds every submitted field that is not modelled explicitly.
type Product struct {
	ID          string
	Name        string
	Description string
	OwnerEmail  string
	Votes       *int64
	VotedUsers  []string
	Status      ProductStatus
	IsFeatured  *bool
	Reported    *bool
	Attributes  map[string]any
}

// HasVoted reports whether email is already in VotedUsers.
func (p *Product) HasVoted(email string) bool {
	return slices.Contains(p.VotedUsers, email)
}

// VoteCount returns Votes, treating an absent counter as zero.
func (p *Product) VoteCount() int64 {
	if p.Votes == nil {
		return 0
	}
	return *p.Votes
}

// Featured and IsReported treat absent flags as false.
func (p *Product) Featured() bool   { return p.IsFeatured != nil && *p.IsFeatured }
func (p *Product) IsReported() bool { return p.Reported != nil && *p.Reported }

// UpdateResult reports how many documents a single-document update touched.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// protectedKeys are never written through a client update: the identifier is
// assigned by the store and the vote fields only change through a vote.
var protectedKeys = map[string]struct{}{
	"_id":        {},
	"votes":      {},
	"votedUsers": {},
}

// UpdateFields returns the subset of a client-supplied document that may be
// $set on a stored product. Every non-protected key present in body is kept,
// including ones set to an empty value. Modelled fields must carry their
// modelled type.
func UpdateFields(body map[string]any) (map[string]any, error) {
	fields := make(map[string]any, len(body))
	for k, v := range body {
		if _, ok := protectedKeys[k]; ok {
			continue
		}
		switch k {
		case "name", "description", "ownerEmail", "status":
			if _, ok := v.(string); !ok {
				return nil, &Error{Kind: ErrValidation, Msg: k + " must be a string"}
			}
		case "isFeatured", "reported":
			if _, ok := v.(bool); !ok {
				return nil, &Error{Kind: ErrValidation, Msg: k + " must be a boolean"}
			}
		}
		fields[k] = v
	}
	return fields, nil
}
