package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"sync/atomic"

	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"go.yaml.in/yaml/v3"
)

//go:embed defaultFlows.yaml
var defaultFlowsYAML []byte

const (
	defaultTemperature   float32 = 0.7
	defaultMaxTokens             = 1000
	defaultTopP          float32 = 1.0
	defaultChunkWords            = 200
	defaultTopChunks             = 3
	defaultDocQAHistory          = 3
	defaultChatHistory           = 5
	maxTemperature       float32 = 2.0
)

var defaultStopWords = []string{"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"}

type ModelSettings struct {
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	TopP        *float32 `yaml:"top_p"`
}

type InputSpec struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Required bool   `yaml:"required" json:"required"`
}

type ChunkingSettings struct {
	MaxWords  int `yaml:"max_words"`
	TopChunks int `yaml:"top_chunks"`
}

type FlowConfig struct {
	Key           string           `yaml:"-"`
	Kind          flowModel.Kind   `yaml:"-"`
	Type          string           `yaml:"type"`
	Name          string           `yaml:"name"`
	Description   string           `yaml:"description"`
	Enabled       *bool            `yaml:"enabled"`
	SystemPrompt  string           `yaml:"system_prompt"`
	Settings      ModelSettings    `yaml:"settings"`
	Chunking      ChunkingSettings `yaml:"chunking"`
	HistoryWindow int              `yaml:"history_window"`
	Inputs        []InputSpec      `yaml:"inputs"`
}

func (f FlowConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

func (f FlowConfig) Temperature() float32 { return *f.Settings.Temperature }

func (f FlowConfig) MaxTokens() int { return f.Settings.MaxTokens }

// ProfileConfig is one chat profile. Temperature has no default: a profile
// without one is rejected at load time.
type ProfileConfig struct {
	Name               string   `yaml:"name"`
	Description        string   `yaml:"markdown_description"`
	Icon               string   `yaml:"icon"`
	SystemPrompt       string   `yaml:"system_prompt"`
	Temperature        *float32 `yaml:"temperature"`
	MaxTokens          int      `yaml:"max_tokens"`
	TopP               *float32 `yaml:"top_p"`
	Enabled            *bool    `yaml:"enabled"`
	SupportsFileUpload bool     `yaml:"supports_file_upload"`
	Citations          bool     `yaml:"citations"`
	ResponseFormat     string   `yaml:"response_format"`
}

func (p ProfileConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

type fileConfig struct {
	DefaultProfile string                   `yaml:"default_profile"`
	StopWords      []string                 `yaml:"stop_words"`
	Flows          map[string]FlowConfig    `yaml:"flows"`
	Profiles       map[string]ProfileConfig `yaml:"profiles"`
}

// Registry is a validated, read-only snapshot of the flow and profile configuration.
type Registry struct {
	flows          map[string]FlowConfig
	profiles       map[string]ProfileConfig
	defaultProfile string
	stopWords      []string
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// LoadRegistry reads the YAML at path, or the embedded defaults when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return ParseRegistry(defaultFlowsYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow config: %w", err)
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing flow config: %w", err)
	}

	var raw fileConfig
	if doc.Kind != 0 {
		expandEnv(&doc)
		if err := doc.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing flow config: %w", err)
		}
	}
	return newRegistry(raw)
}

// expandEnv substitutes ${NAME} inside scalar values of the parsed tree, so an
// environment value is always plain text and never YAML structure. Mapping
// keys are left alone.
func expandEnv(n *yaml.Node) {
	switch n.Kind {
	case yaml.ScalarNode:
		expanded := envPlaceholder.ReplaceAllStringFunc(n.Value, func(m string) string {
			if v, ok := os.LookupEnv(envPlaceholder.FindStringSubmatch(m)[1]); ok {
				return v
			}
			return m
		})
		if expanded == n.Value {
			return
		}
		n.Value = expanded
		// plain scalars re-resolve, so ${TEMPERATURE} can still yield a number
		if n.Style == 0 {
			n.Tag = ""
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			expandEnv(n.Content[i])
		}
	default:
		for _, c := range n.Content {
			expandEnv(c)
		}
	}
}

func newRegistry(raw fileConfig) (*Registry, error) {
	var errs []error
	reg := &Registry{
		flows:          make(map[string]FlowConfig, len(raw.Flows)),
		profiles:       make(map[string]ProfileConfig, len(raw.Profiles)),
		defaultProfile: raw.DefaultProfile,
		stopWords:      raw.StopWords,
	}
	if reg.stopWords == nil {
		reg.stopWords = defaultStopWords
	}

	if len(raw.Flows) == 0 {
		errs = append(errs, errors.New("no flows configured"))
	}
	for key, f := range raw.Flows {
		f.Key = key
		if f.Type == "" {
			f.Type = key
		}
		f.Kind = flowModel.ParseKind(f.Type)
		if f.Kind == flowModel.KindUnsupported {
			errs = append(errs, fmt.Errorf("flow %q: %w %q", key, flowModel.ErrUnsupportedFlow, f.Type))
			continue
		}
		if f.Name == "" {
			f.Name = key
		}
		applyFlowDefaults(&f)
		if err := validateSettings("flow "+key, f.Settings); err != nil {
			errs = append(errs, err)
		}
		for i, in := range f.Inputs {
			if in.Name == "" {
				errs = append(errs, fmt.Errorf("flow %q: input %d missing name", key, i))
			}
		}
		if f.Kind == flowModel.KindDocumentQA && f.SystemPrompt == "" {
			errs = append(errs, fmt.Errorf("flow %q: system_prompt is required", key))
		}
		reg.flows[key] = f
	}

	for key, p := range raw.Profiles {
		if p.Name == "" {
			p.Name = key
		}
		if err := validateProfile(key, p); err != nil {
			errs = append(errs, err)
			continue
		}
		reg.profiles[key] = p
	}

	if reg.defaultProfile != "" {
		if _, ok := raw.Profiles[reg.defaultProfile]; !ok {
			errs = append(errs, fmt.Errorf("default profile %q not found in profiles", reg.defaultProfile))
		}
	}
	for key, f := range reg.flows {
		if f.Kind == flowModel.KindChatAssistant && len(raw.Profiles) == 0 {
			errs = append(errs, fmt.Errorf("flow %q: chat assistant needs at least one profile", key))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

func applyFlowDefaults(f *FlowConfig) {
	if f.Settings.Temperature == nil {
		t := defaultTemperature
		f.Settings.Temperature = &t
	}
	if f.Settings.MaxTokens == 0 {
		f.Settings.MaxTokens = defaultMaxTokens
	}
	if f.Settings.TopP == nil {
		p := defaultTopP
		f.Settings.TopP = &p
	}
	if f.Chunking.MaxWords <= 0 {
		f.Chunking.MaxWords = defaultChunkWords
	}
	if f.Chunking.TopChunks <= 0 {
		f.Chunking.TopChunks = defaultTopChunks
	}
	if f.HistoryWindow <= 0 {
		f.HistoryWindow = defaultChatHistory
		if f.Kind == flowModel.KindDocumentQA {
			f.HistoryWindow = defaultDocQAHistory
		}
	}
}

func validateSettings(owner string, s ModelSettings) error {
	if s.Temperature != nil && (*s.Temperature < 0 || *s.Temperature > maxTemperature) {
		return fmt.Errorf("%s: temperature must be between 0.0 and 2.0", owner)
	}
	if s.MaxTokens < 0 {
		return fmt.Errorf("%s: max_tokens must be a positive integer", owner)
	}
	if s.TopP != nil && (*s.TopP < 0 || *s.TopP > 1) {
		return fmt.Errorf("%s: top_p must be between 0.0 and 1.0", owner)
	}
	return nil
}

func validateProfile(key string, p ProfileConfig) error {
	var errs []error
	if p.SystemPrompt == "" {
		errs = append(errs, fmt.Errorf("profile %q: system_prompt is required", key))
	}
	if p.Temperature == nil {
		errs = append(errs, fmt.Errorf("profile %q: temperature is required", key))
	}
	if err := validateSettings("profile "+key, ModelSettings{Temperature: p.Temperature, MaxTokens: p.MaxTokens, TopP: p.TopP}); err != nil {
		errs = append(errs, err)
	}
	switch p.ResponseFormat {
	case "", "markdown", "plain":
	default:
		errs = append(errs, fmt.Errorf("profile %q: response_format must be markdown or plain", key))
	}
	return errors.Join(errs...)
}

// Flow returns the named flow, failing when it is unknown or switched off.
func (r *Registry) Flow(name string) (FlowConfig, error) {
	f, ok := r.flows[name]
	if !ok {
		return FlowConfig{}, fmt.Errorf("%w: %s", flowModel.ErrFlowNotConfigured, name)
	}
	if !f.IsEnabled() {
		return FlowConfig{}, fmt.Errorf("%w: %s", flowModel.ErrFlowDisabled, name)
	}
	return f, nil
}

// FlowByKind returns the first enabled flow of the given kind, ordered by key.
// When every flow of that kind is switched off the error is ErrFlowDisabled.
func (r *Registry) FlowByKind(kind flowModel.Kind) (FlowConfig, error) {
	disabled := false
	for _, f := range r.sortedFlows() {
		if f.Kind != kind {
			continue
		}
		if f.IsEnabled() {
			return f, nil
		}
		disabled = true
	}
	if disabled {
		return FlowConfig{}, fmt.Errorf("%w: no enabled %s flow", flowModel.ErrFlowDisabled, kind)
	}
	return FlowConfig{}, fmt.Errorf("%w: no %s flow", flowModel.ErrFlowNotConfigured, kind)
}

// Profile resolves a chat profile; the empty name means the configured default.
func (r *Registry) Profile(name string) (ProfileConfig, error) {
	if name == "" {
		name = r.defaultProfile
	}
	p, ok := r.profiles[name]
	if !ok || !p.IsEnabled() {
		return ProfileConfig{}, fmt.Errorf("%w: %q", flowModel.ErrUnknownProfile, name)
	}
	return p, nil
}

// Flows lists the enabled flows ordered by key.
func (r *Registry) Flows() []FlowConfig {
	out := make([]FlowConfig, 0, len(r.flows))
	for _, f := range r.sortedFlows() {
		if f.IsEnabled() {
			out = append(out, f)
		}
	}
	return out
}

func (r *Registry) sortedFlows() []FlowConfig {
	out := make([]FlowConfig, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Profiles lists the enabled profiles ordered by name.
func (r *Registry) Profiles() []ProfileConfig {
	out := make([]ProfileConfig, 0, len(r.profiles))
	for _, p := range r.profiles {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) DefaultProfile() string { return r.defaultProfile }

func (r *Registry) StopWords() []string {
	return append([]string(nil), r.stopWords...)
}

// Holder publishes the current registry; reloads swap the whole snapshot.
type Holder struct {
	current atomic.Pointer[Registry]
}

func NewHolder(reg *Registry) *Holder {
	h := &Holder{}
	h.current.Store(reg)
	return h
}

func (h *Holder) Current() *Registry {
	return h.current.Load()
}

func (h *Holder) Store(reg *Registry) {
	h.current.Store(reg)
}
