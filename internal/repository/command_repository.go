package repository

import "xiaoliu/internal/entities"

// CommandTag labels which canned reply a trigger phrase selects.
type CommandTag string

const (
	TagGreeting        CommandTag = "接入"
	TagStatus          CommandTag = "状态"
	TagDocs            CommandTag = "文档"
	TagManual          CommandTag = "手册"
	TagReadme          CommandTag = "readme"
	TagAnalyze         CommandTag = "分析"
	TagAnalyzeProject  CommandTag = "分析项目"
	TagAnalyzeSoftware CommandTag = "分析软件"
	TagPalette         CommandTag = "配色"
	TagDesign          CommandTag = "设计"
	TagParallel        CommandTag = "并行"
	TagOptimize        CommandTag = "优化"
	TagTest            CommandTag = "测试"
)

// FallbackResponse is returned for a tag with no canned reply.
const FallbackResponse = "✅ 功能执行完成！"

// Trigger pairs a phrase with the tag it selects.
type Trigger struct {
	Phrase string
	Tag    CommandTag
}

// Order matters: the first phrase contained in a message wins, so broader
// phrases such as "配色" shadow later ones such as "配色方案".
var triggers = []Trigger{
	{"你好小柳", TagGreeting},
	{"小柳你好", TagGreeting},
	{"hi小柳", TagGreeting},
	{"小柳在吗", TagStatus},
	{"小柳状态", TagStatus},
	{"生成文档", TagDocs},
	{"写文档", TagDocs},
	{"@文档", TagDocs},
	{"生成手册", TagManual},
	{"@手册", TagManual},
	{"写个README", TagReadme},
	{"@readme", TagReadme},
	{"分析代码", TagAnalyze},
	{"代码分析", TagAnalyze},
	{"@分析", TagAnalyze},
	{"分析这个项目", TagAnalyzeProject},
	{"看看这个软件", TagAnalyzeSoftware},
	{"配色", TagPalette},
	{"配色方案", TagPalette},
	{"@配色", TagPalette},
	{"UI设计", TagDesign},
	{"@设计", TagDesign},
	{"并行开发", TagParallel},
	{"@并行", TagParallel},
	{"优化性能", TagOptimize},
	{"@优化", TagOptimize},
	{"写测试", TagTest},
	{"@测试", TagTest},
}

var cannedResponses = map[CommandTag]string{
	TagGreeting:        "是的柳哥，我是小柳！已成功接入，随时为您服务！",
	TagStatus:          "小柳AI助手运行正常！可用功能：文档生成、代码分析、配色方案、并行开发、性能优化、测试生成",
	TagDocs:            "✅ 文档生成功能已激活！正在扫描项目文件，生成完整文档...",
	TagManual:          "✅ 用户手册生成功能已激活！正在创建详细的使用手册...",
	TagReadme:          "✅ README生成功能已激活！正在创建项目说明文档...",
	TagAnalyze:         "✅ 代码分析功能已激活！正在分析代码结构和质量...",
	TagAnalyzeProject:  "✅ 项目分析功能已激活！正在全面分析项目架构...",
	TagAnalyzeSoftware: "✅ 软件分析功能已激活！正在分析软件功能和特性...",
	TagPalette:         "✅ 配色方案功能已激活！正在生成专业的配色建议...",
	TagDesign:          "✅ UI设计功能已激活！正在提供界面设计建议...",
	TagParallel:        "✅ 并行开发功能已激活！正在优化开发流程...",
	TagOptimize:        "✅ 性能优化功能已激活！正在分析并优化性能...",
	TagTest:            "✅ 测试生成功能已激活！正在创建完整的测试用例...",
}

var features = []entities.Feature{
	{Name: "文档生成", Commands: []string{"生成文档", "写文档", "@文档"}, Description: "自动生成项目文档"},
	{Name: "代码分析", Commands: []string{"分析代码", "代码分析", "@分析"}, Description: "分析代码结构和质量"},
	{Name: "配色方案", Commands: []string{"配色", "配色方案", "@配色"}, Description: "生成专业配色建议"},
	{Name: "并行开发", Commands: []string{"并行开发", "@并行"}, Description: "优化开发流程"},
	{Name: "性能优化", Commands: []string{"优化性能", "@优化"}, Description: "分析和优化性能"},
	{Name: "测试生成", Commands: []string{"写测试", "@测试"}, Description: "生成测试用例"},
}

// CommandRepository serves the process-wide command tables. The tables are
// never mutated, so one repository can be shared by all requests.
type CommandRepository struct{}

func NewCommandRepository() *CommandRepository {
	return &CommandRepository{}
}

// Triggers returns the trigger table in declaration order.
func (r *CommandRepository) Triggers() []Trigger {
	out := make([]Trigger, len(triggers))
	copy(out, triggers)
	return out
}

// CannedResponse returns the fixed reply for tag.
func (r *CommandRepository) CannedResponse(tag CommandTag) (string, bool) {
	resp, ok := cannedResponses[tag]
	return resp, ok
}

// Features returns the discoverability catalog.
func (r *CommandRepository) Features() []entities.Feature {
	out := make([]entities.Feature, len(features))
	for i, f := range features {
		out[i] = entities.Feature{
			Name:        f.Name,
			Commands:    append([]string(nil), f.Commands...),
			Description: f.Description,
		}
	}
	return out
}
