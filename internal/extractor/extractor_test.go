package extractor

import (
	"context"
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"meeting-insights-go/internal/llm"
	"meeting-insights-go/internal/types"
)

type scripted struct {
	text string
	err  error
}

type scriptedGateway struct {
	mu      sync.Mutex
	replies []scripted
	prompts []string
	tokens  []int
}

func (g *scriptedGateway) Query(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := len(g.prompts)
	g.prompts = append(g.prompts, prompt)
	g.tokens = append(g.tokens, maxTokens)
	if err := ctx.Err(); err != nil {
		return llm.Completion{}, err
	}
	if idx >= len(g.replies) {
		return llm.Completion{}, llm.ErrUnavailable
	}
	r := g.replies[idx]
	if r.err != nil {
		return llm.Completion{}, r.err
	}
	return llm.Completion{Text: r.text, Endpoint: "ep-test"}, nil
}

func (g *scriptedGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

var usage = types.CategoryDefinition{
	Name:           "Usage Pattern",
	ValueType:      types.Predefined,
	PossibleValues: []string{"Real Time", "Batch", "Interactive"},
}

var useCase = types.CategoryDefinition{
	Name:        "Use Case",
	Description: "What they want to build",
	ValueType:   types.Inferred,
}

func nullLogger() (logrus.FieldLogger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func TestExtractPredefined(t *testing.T) {
	gw := &scriptedGateway{replies: []scripted{{text: "```json\n" +
		`{"values": ["Batch", "real time", "Banana"], "evidence": ["nightly jobs", "live feed", "fruit"], "confidence": 0.9}` +
		"\n```"}}}
	log, _ := nullLogger()
	got := NewCategoryExtractor(gw, 0, log).Extract(context.Background(), "notes", usage)

	want := types.CategoryResult{
		CategoryName: "Usage Pattern",
		Values:       []string{"Batch", "Real Time"},
		Confidence:   0.9,
		EvidenceText: []string{"nightly jobs", "live feed"},
		ModelUsed:    "ep-test",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
	if gw.calls() != 1 || gw.tokens[0] != CategoryMaxTokens {
		t.Fatalf("calls=%d tokens=%v", gw.calls(), gw.tokens)
	}
	if !strings.HasPrefix(gw.prompts[0], "Options: Real Time, Batch, Interactive\n") {
		t.Fatalf("prompt = %q", gw.prompts[0])
	}
}

func TestExtractRetriesOnceWhenEmpty(t *testing.T) {
	gw := &scriptedGateway{replies: []scripted{
		{text: `{"values": [""], "evidence": [], "confidence": 0.2}`},
		{text: `{"values": ["product catalog search"], "evidence": "for their product catalog"}`},
	}}
	log, hook := nullLogger()
	got := NewCategoryExtractor(gw, 0, log).Extract(context.Background(), "notes", useCase)

	if gw.calls() != 2 {
		t.Fatalf("calls = %d, want 2", gw.calls())
	}
	if gw.prompts[0] != gw.prompts[1] {
		t.Fatal("retry should resend the same prompt")
	}
	if !reflect.DeepEqual(got.Values, []string{"product catalog search"}) || got.Failed() {
		t.Fatalf("got %+v", got)
	}
	if !reflect.DeepEqual(got.EvidenceText, []string{"for their product catalog"}) {
		t.Fatalf("evidence = %v", got.EvidenceText)
	}
	if got.Confidence != defaultConfidence {
		t.Fatalf("confidence = %v, want default", got.Confidence)
	}
	var retried bool
	for _, e := range hook.AllEntries() {
		if e.Message == "extraction retry" {
			retried = true
		}
	}
	if !retried {
		t.Fatal("missing extraction retry log")
	}
}

func TestExtractFailure(t *testing.T) {
	tests := []struct {
		name    string
		cat     types.CategoryDefinition
		replies []scripted
	}{
		{"empty twice", useCase, []scripted{{text: `{"values": []}`}, {text: `{"values": [""]}`}}},
		{"prose twice", useCase, []scripted{{text: "I cannot help with that."}, {text: "Sorry."}}},
		{"gateway unavailable", useCase, nil},
		{"only unknown options", usage, []scripted{{text: `{"values": ["Banana"]}`}, {text: `{"values": ["Kiwi"]}`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &scriptedGateway{replies: tt.replies}
			log, _ := nullLogger()
			got := NewCategoryExtractor(gw, 0, log).Extract(context.Background(), "notes", tt.cat)
			if !reflect.DeepEqual(got, Failed(tt.cat.Name)) {
				t.Fatalf("got %+v", got)
			}
			if got.ModelUsed != "none" || got.Confidence != 0 || len(got.Values) != 0 || got.Values == nil {
				t.Fatalf("failure shape = %+v", got)
			}
			if gw.calls() != 2 {
				t.Fatalf("calls = %d, want 2", gw.calls())
			}
		})
	}
}

func TestExtractRepairsTruncatedResponse(t *testing.T) {
	gw := &scriptedGateway{replies: []scripted{{text: `{"values": ["A`}}}
	log, _ := nullLogger()
	got := NewCategoryExtractor(gw, 0, log).Extract(context.Background(), "notes", useCase)
	if !reflect.DeepEqual(got.Values, []string{"A"}) || got.Failed() {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`{"values": ["x"], "confidence": 1.7}`, 1},
		{`{"values": ["x"], "confidence": -2}`, 0},
		{`{"values": ["x"], "confidence": "0.3"}`, 0.3},
		{`{"values": ["x"], "confidence": "high"}`, defaultConfidence},
		{`{"values": ["x"], "confidence": "NaN"}`, defaultConfidence},
		{`{"values": ["x"], "confidence": "-Inf"}`, defaultConfidence},
		{`{"values": ["x"], "confidence": "+Inf"}`, defaultConfidence},
	}
	for _, tt := range tests {
		gw := &scriptedGateway{replies: []scripted{{text: tt.raw}}}
		log, _ := nullLogger()
		got := NewCategoryExtractor(gw, 0, log).Extract(context.Background(), "notes", useCase)
		if got.Confidence != tt.want {
			t.Errorf("%s: confidence = %v, want %v", tt.raw, got.Confidence, tt.want)
		}
		if _, err := json.Marshal(got); err != nil {
			t.Errorf("%s: marshal: %v", tt.raw, err)
		}
	}
}

func TestClampNaN(t *testing.T) {
	if got := clamp(math.NaN()); got != defaultConfidence {
		t.Fatalf("clamp(NaN) = %v", got)
	}
}

func TestExtractStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gw := &scriptedGateway{replies: []scripted{{text: `{"values": ["x"]}`}}}
	log, _ := nullLogger()
	got := NewCategoryExtractor(gw, 0, log).Extract(ctx, "notes", useCase)
	if !got.Failed() {
		t.Fatalf("got %+v", got)
	}
	if gw.calls() != 1 {
		t.Fatalf("calls = %d, want 1", gw.calls())
	}
}

func TestAlign(t *testing.T) {
	v, e := align([]string{"a", "", "c"}, []string{"ea", "eb", "", "ed"})
	if !reflect.DeepEqual(v, []string{"a", "c"}) || !reflect.DeepEqual(e, []string{"ea", "ed"}) {
		t.Fatalf("align = %v %v", v, e)
	}
}

func TestRestrictDedupes(t *testing.T) {
	v, e := restrict([]string{"batch", "BATCH", "Interactive"}, []string{"x"}, usage.PossibleValues)
	if !reflect.DeepEqual(v, []string{"Batch", "Interactive"}) {
		t.Fatalf("values = %v", v)
	}
	if !reflect.DeepEqual(e, []string{"x"}) {
		t.Fatalf("unpaired evidence should be kept: %v", e)
	}
}

func TestRestrictOptionsDifferingInCase(t *testing.T) {
	allowed := []string{"AI", "ai", "ML"}
	v, e := restrict([]string{"ai", "AI", "Ai", "ml"}, []string{"e1", "e2", "e3", "e4"}, allowed)
	if !reflect.DeepEqual(v, []string{"ai", "AI", "ML"}) {
		t.Fatalf("values = %v", v)
	}
	if !reflect.DeepEqual(e, []string{"e1", "e2", "e4"}) {
		t.Fatalf("evidence = %v", e)
	}
}

func TestCategoryPrompt(t *testing.T) {
	p := CategoryPrompt("We run nightly jobs.", useCase)
	for _, want := range []string{
		`Extract values for "Use Case" from the text.`,
		inferredGuidance["Use Case"],
		"Category description: What they want to build",
		`Text: "We run nightly jobs."`,
		`Return JSON: {"values": ["value"]`,
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}

	custom := types.CategoryDefinition{Name: "Region", ValueType: types.Predefined, PossibleValues: []string{"EMEA", "APAC"}}
	if g := Guidance(custom); g != "Read the document and select options that best match what they describe for Region." {
		t.Fatalf("guidance = %q", g)
	}
	if g := Guidance(types.CategoryDefinition{Name: "Pain", ValueType: types.Inferred}); !strings.Contains(g, "related to Pain") {
		t.Fatalf("guidance = %q", g)
	}
}

func TestCustomerExtractor(t *testing.T) {
	tests := []struct {
		name     string
		reply    scripted
		fallback bool
		text     string
		want     CustomerInfo
	}{
		{
			name:  "json",
			reply: scripted{text: `{"customer_name": "Acme Corp", "meeting_date": "3/11/2025"}`},
			want:  CustomerInfo{CustomerName: "Acme Corp", MeetingDate: "Mar 11, 2025"},
		},
		{
			name:  "placeholders",
			reply: scripted{text: `{"customer_name": "N/A", "meeting_date": "null"}`},
			want:  CustomerInfo{},
		},
		{
			name:  "field patterns",
			reply: scripted{text: `customer_name: 'Globex', meeting_date: 'Nov 12, 2024'`},
			want:  CustomerInfo{CustomerName: "Globex", MeetingDate: "Nov 12, 2024"},
		},
		{
			name:  "unparseable date passes through",
			reply: scripted{text: `{"customer_name": "Initech", "meeting_date": "TBD"}`},
			want:  CustomerInfo{CustomerName: "Initech", MeetingDate: "TBD"},
		},
		{
			name:     "heuristic fallback",
			reply:    scripted{err: llm.ErrUnavailable},
			fallback: true,
			text:     "Meeting with Acme Corp on March 11, 2025. They need search.",
			want:     CustomerInfo{CustomerName: "Acme Corp", MeetingDate: "Mar 11, 2025"},
		},
		{
			name:  "unavailable without fallback",
			reply: scripted{err: llm.ErrUnavailable},
			text:  "Meeting with Acme Corp on March 11, 2025.",
			want:  CustomerInfo{},
		},
		{
			name:     "cancellation skips fallback",
			reply:    scripted{err: context.Canceled},
			fallback: true,
			text:     "Meeting with Acme Corp on March 11, 2025.",
			want:     CustomerInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &scriptedGateway{replies: []scripted{tt.reply}}
			log, _ := nullLogger()
			got := NewCustomerExtractor(gw, tt.fallback, log).Extract(context.Background(), tt.text)
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if gw.tokens[0] != CustomerMaxTokens || !strings.Contains(gw.prompts[0], `"customer_name"`) {
				t.Fatalf("tokens=%v prompt=%q", gw.tokens, gw.prompts[0])
			}
		})
	}
}

func TestHeuristicCustomerInfo(t *testing.T) {
	tests := []struct {
		text string
		want CustomerInfo
	}{
		{"7-Eleven sync 3/11/2025: store search", CustomerInfo{"7-Eleven", "Mar 11, 2025"}},
		{"Notes from TechCorp review, 2024-11-12", CustomerInfo{"TechCorp", "Nov 12, 2024"}},
		{"Call with Globex Industries.\nThey want RAG.", CustomerInfo{"Globex Industries", ""}},
		{"Customer: Initech\nDiscussed pricing on Jan 5, 2025", CustomerInfo{"Initech", "Jan 05, 2025"}},
		{"all lowercase text with no names", CustomerInfo{}},
	}
	for _, tt := range tests {
		if got := HeuristicCustomerInfo(tt.text); got != tt.want {
			t.Errorf("HeuristicCustomerInfo(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}
