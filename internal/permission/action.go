package permission

import (
	"errors"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

// ErrUnknownAction is returned when an action name maps to no capability flag
var ErrUnknownAction = errors.New("There is no action define")

// Action names one capability flag of an access level
type Action int

const (
	ReadEvalData Action = iota + 1
	WriteEvalData
	ReadEvalSettings
	WriteEvalSettings
	ReadCriteriaSettings
	WriteCriteriaSettings
	Export
)

// Call-site action names
const (
	ActionReadCriteriaSetting  = "can_read_criteria_setting"
	ActionWriteCriteriaSetting = "can_write_criteria_setting"
	PermissionCriteria         = "criteria"
)

var actionNames = map[string]Action{
	"can_read_eval_data":          ReadEvalData,
	"can_write_eval_data":         WriteEvalData,
	"can_read_eval_settings":      ReadEvalSettings,
	"can_write_eval_settings":     WriteEvalSettings,
	"can_read_criteria_settings":  ReadCriteriaSettings,
	"can_write_criteria_settings": WriteCriteriaSettings,
	"can_export":                  Export,
}

var accessors = map[Action]func(*models.AccessLevel) bool{
	ReadEvalData:          func(l *models.AccessLevel) bool { return l.CanReadEvalData },
	WriteEvalData:         func(l *models.AccessLevel) bool { return l.CanWriteEvalData },
	ReadEvalSettings:      func(l *models.AccessLevel) bool { return l.CanReadEvalSettings },
	WriteEvalSettings:     func(l *models.AccessLevel) bool { return l.CanWriteEvalSettings },
	ReadCriteriaSettings:  func(l *models.AccessLevel) bool { return l.CanReadCriteriaSettings },
	WriteCriteriaSettings: func(l *models.AccessLevel) bool { return l.CanWriteCriteriaSettings },
	Export:                func(l *models.AccessLevel) bool { return l.CanExport },
}

var setters = map[Action]func(*models.AccessLevel, bool){
	ReadEvalData:          func(l *models.AccessLevel, v bool) { l.CanReadEvalData = v },
	WriteEvalData:         func(l *models.AccessLevel, v bool) { l.CanWriteEvalData = v },
	ReadEvalSettings:      func(l *models.AccessLevel, v bool) { l.CanReadEvalSettings = v },
	WriteEvalSettings:     func(l *models.AccessLevel, v bool) { l.CanWriteEvalSettings = v },
	ReadCriteriaSettings:  func(l *models.AccessLevel, v bool) { l.CanReadCriteriaSettings = v },
	WriteCriteriaSettings: func(l *models.AccessLevel, v bool) { l.CanWriteCriteriaSettings = v },
	Export:                func(l *models.AccessLevel, v bool) { l.CanExport = v },
}

// ParseAction resolves an action name. The singular "_setting(s)" spelling is accepted too.
func ParseAction(name string) (Action, error) {
	name = strings.TrimSpace(name)
	if a, ok := actionNames[name]; ok {
		return a, nil
	}
	if a, ok := actionNames[name+"s"]; ok && strings.HasSuffix(name, "_setting") {
		return a, nil
	}
	return 0, ErrUnknownAction
}

// Allowed reports the flag of level that a grants
func (a Action) Allowed(level *models.AccessLevel) bool {
	get, ok := accessors[a]
	if !ok || level == nil {
		return false
	}
	return get(level)
}

// Set sets the flag of level that a names
func (a Action) Set(level *models.AccessLevel, value bool) {
	if set, ok := setters[a]; ok && level != nil {
		set(level, value)
	}
}

// String returns the canonical flag name
func (a Action) String() string {
	for name, action := range actionNames {
		if action == a {
			return name
		}
	}
	return "unknown"
}
