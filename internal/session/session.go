// Package session owns the state of one matching session: the template picker,
// the evaluation form, the last evaluation and the panel state. It replaces the
// page-level globals of a browser UI with one object and a defined reset.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/assistant"
	"github.com/spigell/resume-matcher/internal/catalog"
	"github.com/spigell/resume-matcher/internal/evaluator"
	"github.com/spigell/resume-matcher/internal/insights"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/results"
)

const (
	missingFieldsMessage = "Please fill in all fields and upload a resume"
	noEvaluationMessage  = "Run an evaluation first."
	chatFailedMessage    = "Chat failed"
	noAnswerMessage      = "No response received."

	questionPreviewLength = 120

	SourceRemote = "remote"
	SourceLocal  = "local"
)

type State int

const (
	StateInput State = iota
	StateResults
)

func (s State) String() string {
	if s == StateResults {
		return "results"
	}
	return "input"
}

type backend interface {
	Evaluate(ctx context.Context, req evaluator.EvaluationRequest) (*evaluator.Result, error)
	Chat(ctx context.Context, req evaluator.ChatRequest) (*evaluator.ChatResponse, error)
	UploadResume(ctx context.Context, filename string, content io.Reader) (*evaluator.Upload, error)
	GetStatus(ctx context.Context) (*evaluator.Status, error)
}

// Form is what the user has entered so far.
type Form struct {
	JobTitle       string
	JobDescription string
	ResumeText     string
	Level          string
}

// Evaluation is a stored evaluation together with its display model.
type Evaluation struct {
	Request evaluator.EvaluationRequest
	Result  *evaluator.Result
	View    results.View
}

type Answer struct {
	Text   string
	Source string
}

type Options struct {
	// MaxUploadBytes bounds resume uploads. Zero means evaluator.DefaultMaxUploadBytes.
	MaxUploadBytes int64
	TargetScore    int
	// Assistant answers questions when the remote chat fails. Optional.
	Assistant assistant.Answerer
}

type Session struct {
	api    backend
	loader *catalog.Loader
	logger *zap.Logger
	opts   Options

	mu         sync.Mutex
	templates  catalog.Selector
	template   *evaluator.Template
	form       Form
	state      State
	generation uint64
	last       *Evaluation
}

func New(api backend, loader *catalog.Loader, log *zap.Logger, opts Options) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	return &Session{
		api:    api,
		loader: loader,
		logger: log,
		opts:   opts,
		form:   Form{Level: evaluator.DefaultLevel},
	}
}

// LoadCatalog refreshes the template picker. On failure the picker is unchanged.
func (s *Session) LoadCatalog(ctx context.Context) error {
	s.mu.Lock()
	sel := s.templates
	sel.Options = append([]catalog.Option(nil), s.templates.Options...)
	s.templates.Disabled = true
	s.mu.Unlock()

	err := s.loader.Load(ctx, &sel)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates.Disabled = false
	if err != nil {
		return err
	}

	// A reset during the load may have cleared the selection.
	if s.templates.Value == "" {
		sel.Value = ""
	}
	if s.template != nil && !sel.Has(s.template.Key) {
		s.template = nil
	}
	s.templates = sel

	return nil
}

// Templates returns a copy of the template picker.
func (s *Session) Templates() catalog.Selector {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.templates
	sel.Options = append([]catalog.Option(nil), s.templates.Options...)
	return sel
}

// SelectTemplate picks a template, fills the job fields from it and returns its
// level insights. An empty key clears the selection. Picking is refused with
// ErrCatalogLoading while LoadCatalog runs.
func (s *Session) SelectTemplate(ctx context.Context, key string) (insights.View, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.templates.Disabled {
			return insights.View{}, ErrCatalogLoading
		}
		s.template = nil
		s.templates.Value = ""
		return insights.View{}, nil
	}

	if s.loading() {
		return insights.View{}, ErrCatalogLoading
	}

	t, err := s.loader.Fetch(ctx, key)
	if err != nil {
		return insights.View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.templates.Disabled {
		return insights.View{}, ErrCatalogLoading
	}

	if s.templates.Has(key) {
		s.templates.Value = key
	}
	s.template = t

	s.form.JobTitle = strings.TrimSpace(t.Title)
	if s.form.JobTitle == "" {
		s.form.JobTitle = catalog.FormatKey(key)
	}
	s.form.JobDescription = strings.TrimSpace(t.Description)

	view := insights.Render(t, s.form.Level)
	s.form.Level = activeLevel(view)

	s.logger.Debug("selected template", logger.SelectionFields(key, s.form.Level)...)

	return view, nil
}

func (s *Session) loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templates.Disabled
}

// SelectLevel changes the level. With a template selected, a level the template
// does not define falls back to its first level.
func (s *Session) SelectLevel(level string) insights.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	level = strings.TrimSpace(level)
	if s.template == nil {
		if level == "" {
			level = evaluator.DefaultLevel
		}
		s.form.Level = level
		return insights.View{}
	}

	view := insights.Render(s.template, level)
	s.form.Level = activeLevel(view)
	return view
}

// Template is the selected template, or nil.
func (s *Session) Template() *evaluator.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// Insights renders the level panel of the selected template.
func (s *Session) Insights() insights.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insights.Render(s.template, s.form.Level)
}

func (s *Session) SetJob(title, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.JobTitle = title
	s.form.JobDescription = description
}

func (s *Session) SetResumeText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.ResumeText = text
}

func (s *Session) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// UploadResume sends a PDF or DOCX file for text extraction and keeps the
// extracted text as the resume. Any failure clears the resume text.
func (s *Session) UploadResume(ctx context.Context, path string) (*evaluator.Upload, error) {
	upload, err := s.uploadResume(ctx, path)
	if err != nil {
		s.SetResumeText("")
		return nil, err
	}

	s.SetResumeText(upload.Content)
	return upload, nil
}

func (s *Session) uploadResume(ctx context.Context, path string) (*evaluator.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &evaluator.ValidationError{Field: "resume", Message: err.Error()}
	}

	if err := evaluator.ValidateResumeFile(info.Name(), info.Size(), s.opts.MaxUploadBytes); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &evaluator.ValidationError{Field: "resume", Message: err.Error()}
	}
	defer f.Close()

	upload, err := s.api.UploadResume(ctx, info.Name(), f)
	if err != nil {
		s.logger.Error("uploading resume", zap.String("file", info.Name()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("uploaded resume",
		zap.String("file", info.Name()),
		zap.Int("content_length", len(upload.Content)),
	)

	return upload, nil
}

// Submit evaluates the current form. Validation failures send nothing. A failed
// or superseded request leaves the stored evaluation untouched.
func (s *Session) Submit(ctx context.Context) (*Evaluation, error) {
	s.mu.Lock()
	form := s.form
	if strings.TrimSpace(form.JobTitle) == "" ||
		strings.TrimSpace(form.JobDescription) == "" ||
		strings.TrimSpace(form.ResumeText) == "" {
		s.mu.Unlock()
		return nil, &evaluator.ValidationError{Message: missingFieldsMessage}
	}

	s.generation++
	generation := s.generation
	templateKey := s.templates.Value
	s.mu.Unlock()

	req := evaluator.EvaluationRequest{
		JobTitle:       strings.TrimSpace(form.JobTitle),
		JobDescription: strings.TrimSpace(form.JobDescription),
		ResumeText:     form.ResumeText,
		InternLevel:    form.Level,
	}
	if strings.TrimSpace(req.InternLevel) == "" {
		req.InternLevel = evaluator.DefaultLevel
	}

	log := logger.WithFields(s.logger, logger.SelectionFields(templateKey, req.InternLevel)...)
	log.Info("submitting evaluation", zap.Uint64("generation", generation))

	result, err := s.api.Evaluate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		log.Debug("discarding superseded evaluation",
			zap.Uint64("generation", generation),
			zap.Uint64("current", s.generation),
		)
		return nil, ErrSuperseded
	}

	if err != nil {
		log.Error("evaluation failed", zap.Error(err))
		return nil, &EvaluationError{Err: err}
	}

	eval := &Evaluation{
		Request: req,
		Result:  result,
		View:    results.Build(result, s.opts.TargetScore),
	}
	s.last = eval
	s.state = StateResults

	log.Info("evaluation complete",
		zap.Int("overall", eval.View.Overall),
		zap.String("source", result.Source),
	)

	return eval, nil
}

// Last returns the stored evaluation, if any.
func (s *Session) Last() (*Evaluation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.last != nil
}

// Overall is the overall score of the stored evaluation, or 0.
func (s *Session) Overall() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return 0
	}
	return s.last.View.Overall
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetTarget changes the target score and returns the updated comparison for the
// stored evaluation.
func (s *Session) SetTarget(target int) results.Comparison {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts.TargetScore = target
	if s.last == nil {
		return results.Compare(0, target)
	}
	s.last.View.Comparison = results.Compare(s.last.View.Overall, target)
	return s.last.View.Comparison
}

// Ask sends a follow-up question about the stored evaluation.
func (s *Session) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &evaluator.ValidationError{Field: "question", Message: "Please enter a question."}
	}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		return nil, &evaluator.ValidationError{Field: "question", Message: noEvaluationMessage}
	}

	evaluationJSON, err := resultJSON(last.Result)
	if err != nil {
		return nil, err
	}

	req := evaluator.ChatRequest{
		Question:       question,
		JobTitle:       last.Request.JobTitle,
		JobDescription: last.Request.JobDescription,
		ResumeText:     last.Request.ResumeText,
		EvaluationJSON: evaluationJSON,
	}

	s.logger.Debug("asking question", zap.String("question", logger.Preview(question, questionPreviewLength)))

	resp, err := s.api.Chat(ctx, req)
	if err == nil {
		return &Answer{Text: answerText(resp.Answer), Source: SourceRemote}, nil
	}

	chatErr := &ChatError{Detail: chatFailedMessage, Err: err}
	var netErr *evaluator.NetworkError
	if errors.As(err, &netErr) && strings.TrimSpace(netErr.Detail) != "" {
		chatErr.Detail = netErr.Detail
	}
	s.logger.Warn("chat failed", zap.Error(err))

	if s.opts.Assistant == nil {
		return nil, chatErr
	}

	text, aerr := s.opts.Assistant.Answer(ctx, assistant.Question{
		Question:       req.Question,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		EvaluationJSON: req.EvaluationJSON,
	})
	if aerr != nil {
		s.logger.Warn("local assistant failed", zap.Error(aerr))
		return nil, chatErr
	}

	return &Answer{Text: answerText(text), Source: SourceLocal}, nil
}

// Reset returns to the input panel and forgets the form and the last
// evaluation. Template catalog and cache are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.form = Form{Level: evaluator.DefaultLevel}
	s.template = nil
	s.templates.Value = ""
	s.last = nil
	s.state = StateInput
	s.generation++

	s.logger.Debug("session reset", zap.Uint64("generation", s.generation))
}

// Probe asks the API for its status. Failures are logged and yield nil.
func (s *Session) Probe(ctx context.Context) *evaluator.Status {
	status, err := s.api.GetStatus(ctx)
	if err != nil {
		s.logger.Debug("status probe failed", zap.Error(err))
		return nil
	}

	s.logger.Debug("api status",
		zap.String("status", status.Status),
		zap.String("version", status.Version),
	)

	return status
}

func activeLevel(view insights.View) string {
	if view.Visible && view.ActiveLevel != "" {
		return view.ActiveLevel
	}
	return evaluator.DefaultLevel
}

func answerText(answer string) string {
	if strings.TrimSpace(answer) == "" {
		return noAnswerMessage
	}
	return answer
}

func resultJSON(r *evaluator.Result) (string, error) {
	if r == nil {
		return "{}", nil
	}
	if len(r.Raw) > 0 {
		return string(r.Raw), nil
	}

	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
