// internal/models/speakers.go
package models

// 两位固定角色的标识（含旧版别名 A/B）
const (
	SpeakerYana = "やな" // 姉: 直感型，口语化
	SpeakerAyu  = "あゆ" // 妹: 分析型，敬语

	speakerAliasYana = "A"
	speakerAliasAyu  = "B"
)

// IsYana 判断说话者是否为やな（含旧版别名）
func IsYana(speaker string) bool {
	return speaker == SpeakerYana || speaker == speakerAliasYana
}

// IsAyu 判断说话者是否为あゆ（含旧版别名）
func IsAyu(speaker string) bool {
	return speaker == SpeakerAyu || speaker == speakerAliasAyu
}

// CanonicalSpeaker 把旧版别名归一化为正式角色名；未知说话者原样返回
func CanonicalSpeaker(speaker string) string {
	switch {
	case IsYana(speaker):
		return SpeakerYana
	case IsAyu(speaker):
		return SpeakerAyu
	default:
		return speaker
	}
}

// OtherSpeaker 返回对话中的另一位角色
func OtherSpeaker(speaker string) string {
	if IsYana(speaker) {
		return SpeakerAyu
	}
	return SpeakerYana
}
