package document

import "github.com/kailas-cloud/docgate/internal/domain"

// docToFields flattens a document into hash fields for HSET.
func docToFields(doc *domain.Document) map[string]string {
	return map[string]string{
		"tenant_id": doc.TenantID,
		"title":     doc.Title,
		"content":   doc.Content,
	}
}

// docFromFields hydrates a document from hash fields.
func docFromFields(id string, fields map[string]string) domain.Document {
	return domain.Document{
		ID:       id,
		TenantID: fields["tenant_id"],
		Title:    fields["title"],
		Content:  fields["content"],
	}
}
