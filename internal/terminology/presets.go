package terminology

// DefaultEntries is the dictionary a fresh session starts with.
var DefaultEntries = []Entry{
	{Source: "アーバンも", Target: "Avamo"},
	{Source: "アバモ", Target: "Avamo"},
	{Source: "エアテレント", Target: "AI Talent"},
	{Source: "ホリプロ", Target: "Horipro"},
	{Source: "クリエイティブチェック", Target: "创意审核"},
	{Source: "アバター", Target: "avatar"},
	{Source: "タレント", Target: "艺人"},
	{Source: "ネイティブチェック", Target: "母语审核"},
}

// Presets is the fixed set merged by ImportPresets.
var Presets = []Entry{
	{Source: "アーバンも", Target: "Avamo"},
	{Source: "アバモ", Target: "Avamo"},
	{Source: "エアテレント", Target: "AI Talent"},
	{Source: "ホリプロ", Target: "Horipro"},
	{Source: "クリエイティブチェック", Target: "创意审核"},
	{Source: "アバター", Target: "虚拟形象"},
	{Source: "タレント", Target: "艺人"},
	{Source: "ネイティブチェック", Target: "母语审核"},
	{Source: "アイドル", Target: "偶像"},
	{Source: "アニメキャラ", Target: "动画角色"},
	{Source: "ビジネスモード", Target: "商业模式"},
	{Source: "デベロップメント", Target: "开发"},
	{Source: "アカウント", Target: "账户"},
	{Source: "クリエイティブ", Target: "创意"},
	{Source: "チェック", Target: "审核"},
	{Source: "コンテンツ", Target: "内容"},
	{Source: "プラットフォーム", Target: "平台"},
}

// Default returns a new dictionary holding DefaultEntries.
func Default() *Dictionary {
	d, _ := NewDictionary(DefaultEntries...)
	return d
}
