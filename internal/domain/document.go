package domain

import "fmt"

// MaxContentSize is the maximum document content size in bytes.
const MaxContentSize = 163840 // 160KB

// Document is an indexed text document owned by a tenant.
//
// Identity is the id alone, not (tenant_id, id): a caller reusing an id
// across tenants overwrites the earlier document (last write wins). Ensuring
// global uniqueness is the caller's responsibility.
type Document struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Validate checks that the document is well-formed for indexing.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document id is required", ErrValidation)
	}
	if len(d.ID) > 256 {
		return fmt.Errorf("%w: document id too long (max 256)", ErrValidation)
	}
	if d.TenantID == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrValidation)
	}
	if d.Content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(d.Content) > MaxContentSize {
		return fmt.Errorf("%w: content too large (max %d bytes)", ErrValidation, MaxContentSize)
	}
	return nil
}
