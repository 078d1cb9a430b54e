// Package signals implements RPB's six independent behavioral aggregators.
// Each extractor returns either a typed bundle or nil ("no data"); none may
// assume any other bundle is present (spec §4.1).
package signals

// VoiceBundle is produced from the most recent voice_note_analyzed event.
type VoiceBundle struct {
	TranscriptWordCount int
	VocabularyRichness  float64
	Sentiment           float64
	DominantEmotions    []string
	SpeakingPace        string // fast|moderate|slow
}

// BioBundle is produced from the user's bio text and bio_edited events.
type BioBundle struct {
	WordCount    int
	EditCount    int
	DeletionRate float64
	Style        string // minimal|moderate|expressive
}

// MessagingBundle is produced from the user's most recent messages.
type MessagingBundle struct {
	AvgCharLength      float64
	QuestionRate       float64
	EmojiRate          float64
	VocabularyDiversity float64
	TotalCount         int
}

// TypingBundle is produced from paired typing_started/typing_stopped events.
type TypingBundle struct {
	MeanBurstMS     float64
	CadenceVarianceMS float64
}

// SessionBundle is produced from app_opened/app_closed events.
type SessionBundle struct {
	HourlyActivity  [24]float64
	MeanDurationMS  float64
	SessionsPerDay  float64
}

// BrowsingBundle is produced from profile_viewed/photo_viewed events.
type BrowsingBundle struct {
	PhotoDwellRatio        float64
	AvgDwellMS             float64
	BioReadRate            float64
	ProfileViewsPerSession float64
}
