package repository

import (
	"reflect"
	"strings"
	"testing"
	"xiaoliu/internal/entities"
)

func TestTriggersOrder(t *testing.T) {
	want := []Trigger{
		{"你好小柳", "接入"},
		{"小柳你好", "接入"},
		{"hi小柳", "接入"},
		{"小柳在吗", "状态"},
		{"小柳状态", "状态"},
		{"生成文档", "文档"},
		{"写文档", "文档"},
		{"@文档", "文档"},
		{"生成手册", "手册"},
		{"@手册", "手册"},
		{"写个README", "readme"},
		{"@readme", "readme"},
		{"分析代码", "分析"},
		{"代码分析", "分析"},
		{"@分析", "分析"},
		{"分析这个项目", "分析项目"},
		{"看看这个软件", "分析软件"},
		{"配色", "配色"},
		{"配色方案", "配色"},
		{"@配色", "配色"},
		{"UI设计", "设计"},
		{"@设计", "设计"},
		{"并行开发", "并行"},
		{"@并行", "并行"},
		{"优化性能", "优化"},
		{"@优化", "优化"},
		{"写测试", "测试"},
		{"@测试", "测试"},
	}

	got := NewCommandRepository().Triggers()
	if len(got) != len(want) {
		t.Fatalf("got %d triggers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trigger %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTriggersReturnsCopy(t *testing.T) {
	repo := NewCommandRepository()
	got := repo.Triggers()
	got[0].Tag = "mutated"

	if repo.Triggers()[0].Tag != TagGreeting {
		t.Fatal("mutating the returned slice changed the table")
	}
}

func TestCannedResponses(t *testing.T) {
	tests := []struct {
		tag  CommandTag
		want string
	}{
		{TagGreeting, "是的柳哥，我是小柳！已成功接入，随时为您服务！"},
		{TagStatus, "小柳AI助手运行正常！可用功能：文档生成、代码分析、配色方案、并行开发、性能优化、测试生成"},
		{TagDocs, "✅ 文档生成功能已激活！正在扫描项目文件，生成完整文档..."},
		{TagManual, "✅ 用户手册生成功能已激活！正在创建详细的使用手册..."},
		{TagReadme, "✅ README生成功能已激活！正在创建项目说明文档..."},
		{TagAnalyze, "✅ 代码分析功能已激活！正在分析代码结构和质量..."},
		{TagAnalyzeProject, "✅ 项目分析功能已激活！正在全面分析项目架构..."},
		{TagAnalyzeSoftware, "✅ 软件分析功能已激活！正在分析软件功能和特性..."},
		{TagPalette, "✅ 配色方案功能已激活！正在生成专业的配色建议..."},
		{TagDesign, "✅ UI设计功能已激活！正在提供界面设计建议..."},
		{TagParallel, "✅ 并行开发功能已激活！正在优化开发流程..."},
		{TagOptimize, "✅ 性能优化功能已激活！正在分析并优化性能..."},
		{TagTest, "✅ 测试生成功能已激活！正在创建完整的测试用例..."},
	}

	repo := NewCommandRepository()
	for _, tt := range tests {
		got, ok := repo.CannedResponse(tt.tag)
		if !ok {
			t.Errorf("tag %q has no canned response", tt.tag)
			continue
		}
		if got != tt.want {
			t.Errorf("tag %q: got %q, want %q", tt.tag, got, tt.want)
		}
	}

	if _, ok := repo.CannedResponse("unknown"); ok {
		t.Error("unknown tag should have no canned response")
	}
}

func TestEveryTriggerTagHasResponse(t *testing.T) {
	repo := NewCommandRepository()
	for _, tr := range repo.Triggers() {
		if _, ok := repo.CannedResponse(tr.Tag); !ok {
			t.Errorf("trigger %q maps to tag %q with no canned response", tr.Phrase, tr.Tag)
		}
	}
}

func TestFeaturesCatalog(t *testing.T) {
	want := []entities.Feature{
		{Name: "文档生成", Commands: []string{"生成文档", "写文档", "@文档"}, Description: "自动生成项目文档"},
		{Name: "代码分析", Commands: []string{"分析代码", "代码分析", "@分析"}, Description: "分析代码结构和质量"},
		{Name: "配色方案", Commands: []string{"配色", "配色方案", "@配色"}, Description: "生成专业配色建议"},
		{Name: "并行开发", Commands: []string{"并行开发", "@并行"}, Description: "优化开发流程"},
		{Name: "性能优化", Commands: []string{"优化性能", "@优化"}, Description: "分析和优化性能"},
		{Name: "测试生成", Commands: []string{"写测试", "@测试"}, Description: "生成测试用例"},
	}

	got := NewCommandRepository().Features()
	if len(got) != len(want) {
		t.Fatalf("got %d features, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("feature %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFeaturesReturnsCopy(t *testing.T) {
	repo := NewCommandRepository()
	first := repo.Features()
	first[0].Name = "changed"
	first[0].Commands[0] = "changed"

	second := repo.Features()
	if second[0].Name != "文档生成" || second[0].Commands[0] != "生成文档" {
		t.Errorf("catalog was mutated through a returned copy: %+v", second[0])
	}
}

func TestFeatureCommandsAreTriggers(t *testing.T) {
	repo := NewCommandRepository()
	phrases := make(map[string]bool)
	for _, tr := range repo.Triggers() {
		phrases[tr.Phrase] = true
	}

	feats := repo.Features()
	if len(feats) != 6 {
		t.Fatalf("got %d features, want 6", len(feats))
	}
	for _, f := range feats {
		if len(f.Commands) == 0 {
			t.Errorf("feature %q lists no commands", f.Name)
		}
		for _, cmd := range f.Commands {
			if !phrases[cmd] {
				t.Errorf("feature %q lists %q which is not a trigger phrase", f.Name, cmd)
			}
		}
		if strings.TrimSpace(f.Description) == "" {
			t.Errorf("feature %q has no description", f.Name)
		}
	}
}
