package service

import (
	"fmt"
	"strings"

	"bizrecords/internal/event"
	"bizrecords/internal/model"
)

// Collaborators are the stores the built-in restore strategies write to.
type Collaborators struct {
	Collections func(name string) FlatCollaborator
	Namespaces  NamespaceStore
	Notifier    Notifier
}

type flatType struct {
	originalType model.OriginalType
	display      model.DisplayInfo
}

var flatTypes = []flatType{
	{model.TypeSupplier, model.DisplayInfo{Label: "Supplier", IconKey: "truck", ColorKey: "blue", Extract: field("name")}},
	{model.TypeCustomer, model.DisplayInfo{Label: "Customer", IconKey: "users", ColorKey: "green", Extract: field("name")}},
	{model.TypeRawMaterial, model.DisplayInfo{Label: "Raw material", IconKey: "cube", ColorKey: "amber", Extract: field("name")}},
	{model.TypeProduct, model.DisplayInfo{Label: "Product", IconKey: "package", ColorKey: "purple", Extract: field("name")}},
	{model.TypeEmployee, model.DisplayInfo{Label: "Employee", IconKey: "id-badge", ColorKey: "teal", Extract: employeeName}},
	{model.TypeManufactured, model.DisplayInfo{Label: "Manufactured item", IconKey: "factory", ColorKey: "slate", Extract: field("name")}},
	{model.TypeTender, model.DisplayInfo{Label: "Tender", IconKey: "gavel", ColorKey: "indigo", Extract: field("title", "name")}},
}

// NewDefaultRegistry registers every business record type with its restore
// strategy and display mapping.
func NewDefaultRegistry(c Collaborators) *Registry {
	registry := NewRegistry()

	for _, ft := range flatTypes {
		registry.MustRegister(Registration{
			Type:     ft.originalType,
			Strategy: NewFlatStrategy(c.Collections(string(ft.originalType))),
			Display:  ft.display,
		})
	}

	quoteDisplay := func(label string) model.DisplayInfo {
		return model.DisplayInfo{Label: label, IconKey: "tag", ColorKey: "orange", Extract: quoteTitle}
	}
	registry.MustRegister(Registration{
		Type:        model.TypeRawMaterialQuote,
		Strategy:    NewNestedMergeStrategy(c.Collections(string(model.TypeRawMaterial)), "quotes", "parentId", QuoteAggregate),
		Display:     quoteDisplay("Raw material quote"),
		ParentField: "parentId",
	})
	registry.MustRegister(Registration{
		Type:        model.TypeProductQuote,
		Strategy:    NewNestedMergeStrategy(c.Collections(string(model.TypeProduct)), "quotes", "parentId", QuoteAggregate),
		Display:     quoteDisplay("Product quote"),
		ParentField: "parentId",
	})

	registry.MustRegister(Registration{
		Type:       model.TypeTenderItem,
		Strategy:   NewNamespaceStrategy(c.Namespaces, c.Notifier, "tenderItems", []string{"name", "unit"}, event.TypeTenderItemRestored),
		Display:    model.DisplayInfo{Label: "Tender item", IconKey: "list", ColorKey: "cyan", Extract: field("name", "description")},
		OwnerField: "tenderId",
	})
	registry.MustRegister(Registration{
		Type:       model.TypeTenderDocument,
		Strategy:   NewNamespaceStrategy(c.Namespaces, c.Notifier, "tenderDocuments", []string{"fileName"}, event.TypeTenderDocumentRestored),
		Display:    model.DisplayInfo{Label: "Tender document", IconKey: "file", ColorKey: "gray", Extract: field("fileName", "title")},
		OwnerField: "tenderId",
	})

	return registry
}

// field extracts the first non-empty of fields.
func field(fields ...string) func(model.Record) string {
	return func(record model.Record) string {
		for _, f := range fields {
			if value := stringField(record, f); value != "" {
				return value
			}
		}
		return ""
	}
}

func employeeName(record model.Record) string {
	full := strings.TrimSpace(stringField(record, "firstName") + " " + stringField(record, "lastName"))
	if full != "" {
		return full
	}
	return stringField(record, "name")
}

func quoteTitle(record model.Record) string {
	supplier := stringField(record, "supplierName")
	price := stringField(record, "price")
	switch {
	case supplier != "" && price != "":
		return fmt.Sprintf("%s @ %s", supplier, price)
	case supplier != "":
		return supplier
	default:
		return price
	}
}
