package domain

import "encoding/json"

// productKeys are the wire names of the explicitly modelled Product fields.
var productKeys = map[string]struct{}{
	"_id":         {},
	"name":        {},
	"description": {},
	"ownerEmail":  {},
	"votes":       {},
	"votedUsers":  {},
	"status":      {},
	"isFeatured":  {},
	"reported":    {},
}

// IsProductKey reports whether key names an explicitly modelled field.
func IsProductKey(key string) bool {
	_, ok := productKeys[key]
	return ok
}

type productWire struct {
	ID          string        `json:"_id,omitempty"`
	Name        string        `json:"name,omitempty"`
	Description string        `json:"description,omitempty"`
	OwnerEmail  string        `json:"ownerEmail,omitempty"`
	Votes       *int64        `json:"votes,omitempty"`
	VotedUsers  []string      `json:"votedUsers"`
	Status      ProductStatus `json:"status,omitempty"`
	IsFeatured  *bool         `json:"isFeatured,omitempty"`
	Reported    *bool         `json:"reported,omitempty"`
}

// MarshalJSON flattens Attributes next to the modelled fields, so the object
// looks like the stored document.
func (p Product) MarshalJSON() ([]byte, error) {
	voted := p.VotedUsers
	if voted == nil {
		voted = []string{}
	}
	known, err := json.Marshal(productWire{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerEmail:  p.OwnerEmail,
		Votes:       p.Votes,
		VotedUsers:  voted,
		Status:      p.Status,
		IsFeatured:  p.IsFeatured,
		Reported:    p.Reported,
	})
	if err != nil || len(p.Attributes) == 0 {
		return known, err
	}

	out := make(map[string]json.RawMessage, len(p.Attributes)+len(productKeys))
	for k, v := range p.Attributes {
		if IsProductKey(k) {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits a submitted object into modelled fields and Attributes.
func (p *Product) UnmarshalJSON(data []byte) error {
	var known productWire
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	attrs := make(map[string]any)
	for k, v := range raw {
		if IsProductKey(k) {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		attrs[k] = val
	}

	*p = Product{
		ID:          known.ID,
		Name:        known.Name,
		Description: known.Description,
		OwnerEmail:  known.OwnerEmail,
		Votes:       known.Votes,
		VotedUsers:  known.VotedUsers,
		Status:      known.Status,
		IsFeatured:  known.IsFeatured,
		Reported:    known.Reported,
	}
	if len(attrs) > 0 {
		p.Attributes = attrs
	}
	return nil
}
