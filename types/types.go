// Package types defines the shared value types of the Strategy One SDK:
// server object type tags, subtypes, access rights, and the dotted server
// version scheme used for feature gating.
package types

import "fmt"

// ObjectType identifies the metadata object type a remote object represents.
// The numeric values are fixed by the Intelligence Server wire protocol.
type ObjectType int

// Known metadata object types.
const (
	ObjectTypeNone               ObjectType = -1
	ObjectTypeFilter             ObjectType = 1
	ObjectTypeTemplate           ObjectType = 2
	ObjectTypeReportDefinition   ObjectType = 3
	ObjectTypeMetric             ObjectType = 4
	ObjectTypeAggMetric          ObjectType = 7
	ObjectTypeFolder             ObjectType = 8
	ObjectTypeDevice             ObjectType = 9
	ObjectTypePrompt             ObjectType = 10
	ObjectTypeFunction           ObjectType = 11
	ObjectTypeAttribute          ObjectType = 12
	ObjectTypeFact               ObjectType = 13
	ObjectTypeDimension          ObjectType = 14
	ObjectTypeTable              ObjectType = 15
	ObjectTypeMonitor            ObjectType = 20
	ObjectTypeProject            ObjectType = 32
	ObjectTypeUser               ObjectType = 34
	ObjectTypeTransmitter        ObjectType = 35
	ObjectTypeSearch             ObjectType = 39
	ObjectTypeSecurityRole       ObjectType = 44
	ObjectTypeConsolidation      ObjectType = 47
	ObjectTypeScheduleEvent      ObjectType = 49
	ObjectTypeDocumentDefinition ObjectType = 55
	ObjectTypeSecurityFilter     ObjectType = 58
	ObjectTypeShortcut           ObjectType = 67
	ObjectTypeScript             ObjectType = 76
	ObjectTypeTimezone           ObjectType = 79
	ObjectTypeCalendar           ObjectType = 81
	ObjectTypeDriver             ObjectType = 84
)

var objectTypeNames = map[ObjectType]string{
	ObjectTypeNone:               "none",
	ObjectTypeFilter:             "filter",
	ObjectTypeTemplate:           "template",
	ObjectTypeReportDefinition:   "report_definition",
	ObjectTypeMetric:             "metric",
	ObjectTypeAggMetric:          "agg_metric",
	ObjectTypeFolder:             "folder",
	ObjectTypeDevice:             "device",
	ObjectTypePrompt:             "prompt",
	ObjectTypeFunction:           "function",
	ObjectTypeAttribute:          "attribute",
	ObjectTypeFact:               "fact",
	ObjectTypeDimension:          "dimension",
	ObjectTypeTable:              "table",
	ObjectTypeMonitor:            "monitor",
	ObjectTypeProject:            "project",
	ObjectTypeUser:               "user",
	ObjectTypeTransmitter:        "transmitter",
	ObjectTypeSearch:             "search",
	ObjectTypeSecurityRole:       "security_role",
	ObjectTypeConsolidation:      "consolidation",
	ObjectTypeScheduleEvent:      "schedule_event",
	ObjectTypeDocumentDefinition: "document_definition",
	ObjectTypeSecurityFilter:     "security_filter",
	ObjectTypeShortcut:           "shortcut",
	ObjectTypeScript:             "script",
	ObjectTypeTimezone:           "timezone",
	ObjectTypeCalendar:           "calendar",
	ObjectTypeDriver:             "driver",
}

// String returns the snake_case name of the object type, or a numeric
// placeholder for values this SDK build does not know about. Unknown values
// are preserved rather than rejected so a newer server does not break older
// clients.
func (t ObjectType) String() string {
	if name, ok := objectTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("undefined_type:%d", int(t))
}

// ObjectSubType refines an ObjectType. The high byte of a subtype value is
// the object type it belongs to.
type ObjectSubType int

// Known object subtypes.
const (
	ObjectSubTypeNone        ObjectSubType = -1
	ObjectSubTypeFilter      ObjectSubType = 256
	ObjectSubTypeCustomGroup ObjectSubType = 257
	ObjectSubTypeReportGrid  ObjectSubType = 768
	ObjectSubTypeReportGraph ObjectSubType = 769
	ObjectSubTypeReportCube  ObjectSubType = 776
	ObjectSubTypeSuperCube   ObjectSubType = 779
	ObjectSubTypeMetric      ObjectSubType = 1024
	ObjectSubTypeFolder      ObjectSubType = 2048
	ObjectSubTypeUser        ObjectSubType = 8704
	ObjectSubTypeUserGroup   ObjectSubType = 8705
)

// Type returns the ObjectType the subtype belongs to.
func (s ObjectSubType) Type() ObjectType {
	if s <= 0 {
		return ObjectTypeNone
	}
	return ObjectType(int(s) >> 8)
}

// BelongsTo reports whether the subtype refines the given object type.
func (s ObjectSubType) BelongsTo(t ObjectType) bool {
	return s.Type() == t
}

// Owner is the id/name pair embedded in object info payloads.
type Owner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OwnerFromMap builds an Owner from a decoded JSON payload.
func OwnerFromMap(source map[string]any) Owner {
	o := Owner{}
	if id, ok := source["id"].(string); ok {
		o.ID = id
	}
	if name, ok := source["name"].(string); ok {
		o.Name = name
	}
	return o
}

// CertifiedInfo carries the certification status embedded in document and
// report payloads.
type CertifiedInfo struct {
	Certified     bool   `json:"certified"`
	CertifiedBy   string `json:"certifiedBy,omitempty"`
	CertifiedDate string `json:"certifiedDate,omitempty"`
}

// CertifiedInfoFromMap builds a CertifiedInfo from a decoded JSON payload.
func CertifiedInfoFromMap(source map[string]any) CertifiedInfo {
	c := CertifiedInfo{}
	if v, ok := source["certified"].(bool); ok {
		c.Certified = v
	}
	if v, ok := source["certified_by"].(string); ok {
		c.CertifiedBy = v
	} else if v, ok := source["certifiedBy"].(string); ok {
		c.CertifiedBy = v
	}
	if v, ok := source["certified_date"].(string); ok {
		c.CertifiedDate = v
	} else if v, ok := source["certifiedDate"].(string); ok {
		c.CertifiedDate = v
	}
	return c
}
