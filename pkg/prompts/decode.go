package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownFeature is returned by DecodeTask for an unrecognised feature.
var ErrUnknownFeature = errors.New("unknown feature")

// ParseFeature resolves a feature by name.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Features() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("prompts: %w: %q", ErrUnknownFeature, s)
}

// DecodeTask decodes a JSON object into the task for f, starting from the
// feature's form defaults so omitted fields keep them. Unknown keys are
// ignored. The task is not validated; Build does that.
func DecodeTask(f Feature, data []byte) (Task, error) {
	switch f {
	case FeatureChatStyle:
		return decodeInto(data, DefaultChatStyle())
	case FeatureTalkSmart:
		return decodeInto(data, DefaultTalkSmart())
	case FeatureTranslate:
		return decodeInto(data, Translate{})
	case FeatureDailyPal:
		return decodeInto(data, DefaultDailyPal())
	default:
		return nil, fmt.Errorf("prompts: %w: %q", ErrUnknownFeature, f)
	}
}

func decodeInto[T Task](data []byte, task T) (Task, error) {
	if len(data) == 0 {
		return task, nil
	}
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("prompts: decode %s: %w", task.Feature(), err)
	}
	return task, nil
}
