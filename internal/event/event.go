package event

type Type string

const (
	TypeTrashMoved    Type = "trash.moved"
	TypeTrashRestored Type = "trash.restored"
	TypeTrashDeleted  Type = "trash.deleted"
	TypeTrashPurged   Type = "trash.purged"

	TypeNamespaceChanged       Type = "namespace.changed"
	TypeTenderItemRestored     Type = "tender_item.restored"
	TypeTenderDocumentRestored Type = "tender_document.restored"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"` // Who triggered the event
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
