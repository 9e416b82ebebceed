package model

// Record is an arbitrary entity snapshot as handled by the trash store.
type Record map[string]any

// OriginalType identifies the entity family a TrashRecord belongs to.
type OriginalType string

const (
	TypeSupplier     OriginalType = "suppliers"
	TypeCustomer     OriginalType = "customers"
	TypeRawMaterial  OriginalType = "rawmaterials"
	TypeProduct      OriginalType = "products"
	TypeEmployee     OriginalType = "employees"
	TypeManufactured OriginalType = "manufactured"
	TypeTender       OriginalType = "tenders"

	TypeRawMaterialQuote OriginalType = "rawmaterial_quotes"
	TypeProductQuote     OriginalType = "product_quotes"

	TypeTenderItem     OriginalType = "tender_items"
	TypeTenderDocument OriginalType = "tender_documents"
)

// ContextRefs points at the owner of a sub-record at the time it was deleted.
type ContextRefs struct {
	ParentID string `json:"parent_id,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
}

func (c ContextRefs) IsZero() bool {
	return c.ParentID == "" && c.OwnerID == ""
}

// TrashRecord is the snapshot of a deleted entity. It is written once and
// removed once, either by restoration or by permanent deletion.
type TrashRecord struct {
	ID           string       `json:"id"`
	OriginalID   string       `json:"original_id"`
	OriginalType OriginalType `json:"original_type"`
	Fingerprint  string       `json:"fingerprint"`
	Payload      Record       `json:"payload"`
	ContextRefs  ContextRefs  `json:"context_refs"`
	DeletedAt    string       `json:"deleted_at"`
	DeletedBy    AuditActor   `json:"deleted_by"`
}

// DedupKey is the tuple that must be unique among stored records.
func (r TrashRecord) DedupKey() string {
	return string(r.OriginalType) + "|" + r.OriginalID + "|" + r.Fingerprint
}

// MoveResult is returned by a move-to-trash call. AlreadyTrashed reports the
// idempotent no-op case, where TrashID is the record that was already stored.
type MoveResult struct {
	TrashID        string `json:"trash_id"`
	AlreadyTrashed bool   `json:"already_trashed"`
}

// RestoreResult references the entity that a restore brought back.
type RestoreResult struct {
	TrashID      string       `json:"trash_id"`
	OriginalType OriginalType `json:"original_type"`
	Strategy     string       `json:"strategy"`
	RestoredID   string       `json:"restored_id"`
	ParentID     string       `json:"parent_id,omitempty"`
	Namespace    string       `json:"namespace,omitempty"`
}

// DisplayInfo describes how a trashed record of one type is presented.
type DisplayInfo struct {
	Label    string              `json:"label" yaml:"label"`
	IconKey  string              `json:"icon_key" yaml:"icon_key"`
	ColorKey string              `json:"color_key" yaml:"color_key"`
	Extract  func(Record) string `json:"-" yaml:"-"`
}

// TrashListItem is a trash record decorated for listing UIs.
type TrashListItem struct {
	TrashRecord
	Label    string `json:"label"`
	IconKey  string `json:"icon_key"`
	ColorKey string `json:"color_key"`
	Title    string `json:"title"`
}
