// Package coach is a scripted responder built on ordered keyword rules. It has
// no state and makes no external calls.
package coach

import (
	"strings"
	"unicode"
)

// Lang selects the reply language.
type Lang string

const (
	English Lang = "en"
	Chinese Lang = "zh"
)

// Rule maps a keyword set to a canned reply. The first rule with a keyword
// contained in the input wins.
type Rule struct {
	Name     string
	Keywords []string
	Replies  map[Lang]string
}

// Coach holds an ordered rule list plus the reply used when nothing matches.
type Coach struct {
	Rules    []Rule
	Fallback map[Lang]string
	Intro    map[Lang]string
}

var defaultCoach = Coach{
	Rules: []Rule{
		{
			Name:     "struggle",
			Keywords: []string{"难", "累", "放弃", "hard", "tired", "give up", "quit", "difficult"},
			Replies: map[Lang]string{
				Chinese: "这是正常的。记住“两分钟规则”：当开始一个新习惯时，它所花的时间不应超过两分钟。试着把你的习惯缩小到只需要做两分钟，比如“穿上跑鞋”而不是“跑3公里”。",
				English: "That's normal. Remember the two-minute rule: when you start a new habit, it should take less than two minutes to do. Scale it down until it fits, like \"put on running shoes\" instead of \"run 3 km\".",
			},
		},
		{
			Name:     "forgetting",
			Keywords: []string{"忘", "不记得", "forgot", "forget", "remember"},
			Replies: map[Lang]string{
				Chinese: "这就是为什么我们需要第一定律：让它显而易见。试着通过“习惯堆叠”来解决——把新习惯绑定在这一天中你肯定会做的动作之后。",
				English: "That's why the first law is to make it obvious. Try habit stacking: tie the new habit to something you already do every day, right after it happens.",
			},
		},
		{
			Name:     "boredom",
			Keywords: []string{"无聊", "没动力", "bored", "boring", "unmotivated", "no motivation"},
			Replies: map[Lang]string{
				Chinese: "当动力枯竭时，习惯能够支撑你继续前行。金发姑娘准则告诉我们，当我们从事难度恰好在能力边缘的任务时，人类体验到的动力达到顶峰。你的习惯是否太简单了？还是太难了？",
				English: "When motivation runs out, habits carry you. The Goldilocks rule says motivation peaks on tasks right at the edge of your ability. Is your habit too easy, or too hard?",
			},
		},
		{
			Name:     "thanks",
			Keywords: []string{"谢谢", "thanks", "thank you"},
			Replies: map[Lang]string{
				Chinese: "不客气。哪怕只有 1% 的进步，日积月累也会产生巨大的变化。保持这种势头。",
				English: "You're welcome. Getting 1% better each day adds up to something remarkable. Keep the momentum.",
			},
		},
	},
	Fallback: map[Lang]string{
		Chinese: "很有趣的观点。关注你的体系，而不是目标。你不需要仅仅想着结果，而是要成为能够达成结果的那种人。",
		English: "Interesting. Focus on your system, not your goals. Don't just think about the outcome; become the kind of person who gets there.",
	},
	Intro: map[Lang]string{
		Chinese: "你好，我是你的 AI 教练。我基于詹姆斯·克利尔的《原子习惯》设计。今天感觉怎么样？有没有哪个习惯让你觉得难以坚持？",
		English: "Hi, I'm your habit coach, built on the ideas in Atomic Habits. How are you feeling today? Is any habit hard to keep up?",
	},
}

// Default returns the built-in coach.
func Default() Coach {
	return defaultCoach
}

// DetectLang answers in Chinese when the input contains Han characters.
func DetectLang(text string) Lang {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return Chinese
		}
	}
	return English
}

func pick(replies map[Lang]string, lang Lang) string {
	if s, ok := replies[lang]; ok {
		return s
	}
	return replies[English]
}

// Match returns the first rule triggered by text.
func (c Coach) Match(text string) (Rule, bool) {
	lower := strings.ToLower(text)
	for _, rule := range c.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule, true
			}
		}
	}
	return Rule{}, false
}

// Reply answers text in the language it was written in.
func (c Coach) Reply(text string) string {
	lang := DetectLang(text)
	if rule, ok := c.Match(text); ok {
		return pick(rule.Replies, lang)
	}
	return pick(c.Fallback, lang)
}

// Greeting is the opening message of a session.
func (c Coach) Greeting(lang Lang) string {
	return pick(c.Intro, lang)
}

// Classify answers text with the built-in coach.
func Classify(text string) string {
	return defaultCoach.Reply(text)
}
