package service

import (
	"github.com/samber/lo"

	"bizrecords/internal/model"
)

var unknownDisplay = model.DisplayInfo{Label: "unknown item", IconKey: "help-circle", ColorKey: "gray"}

// DisplayInfoResolver decorates trash records for listing. Configured
// overrides win over the registered label, icon and color; the extractor
// always comes from the registration.
type DisplayInfoResolver struct {
	registry  *Registry
	overrides map[model.OriginalType]model.DisplayInfo
}

func NewDisplayInfoResolver(registry *Registry, overrides map[model.OriginalType]model.DisplayInfo) *DisplayInfoResolver {
	if overrides == nil {
		overrides = map[model.OriginalType]model.DisplayInfo{}
	}
	return &DisplayInfoResolver{registry: registry, overrides: overrides}
}

func (r *DisplayInfoResolver) Info(originalType model.OriginalType) model.DisplayInfo {
	info := unknownDisplay
	if reg, ok := r.registry.Lookup(originalType); ok {
		info = reg.Display
	}

	if override, ok := r.overrides[originalType]; ok {
		if override.Label != "" {
			info.Label = override.Label
		}
		if override.IconKey != "" {
			info.IconKey = override.IconKey
		}
		if override.ColorKey != "" {
			info.ColorKey = override.ColorKey
		}
	}
	return info
}

func (r *DisplayInfoResolver) Resolve(record model.TrashRecord) model.TrashListItem {
	info := r.Info(record.OriginalType)

	title := ""
	if info.Extract != nil {
		title = info.Extract(record.Payload)
	}
	if title == "" {
		title = record.OriginalID
	}

	return model.TrashListItem{
		TrashRecord: record,
		Label:       info.Label,
		IconKey:     info.IconKey,
		ColorKey:    info.ColorKey,
		Title:       title,
	}
}

func (r *DisplayInfoResolver) ResolveAll(records []model.TrashRecord) []model.TrashListItem {
	return lo.Map(records, func(record model.TrashRecord, _ int) model.TrashListItem {
		return r.Resolve(record)
	})
}
