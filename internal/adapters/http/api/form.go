package api

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/okian/glyco/internal/domain/scoring"
	"github.com/okian/glyco/internal/domain/validate"
	"github.com/okian/glyco/pkg/logger"
)

// FormHandler serves the browser form flow on /predict.
type FormHandler struct {
	deps       Dependencies
	resultTmpl *template.Template
	errorTmpl  *template.Template
}

// NewFormHandler creates a handler bound to the given dependencies.
func NewFormHandler(deps Dependencies) *FormHandler {
	return &FormHandler{
		deps:       deps,
		resultTmpl: template.Must(template.New("result").Parse(resultPage)),
		errorTmpl:  template.Must(template.New("errors").Parse(errorPage)),
	}
}

// resultView feeds the result page template.
type resultView struct {
	HighRisk    bool
	Probability string
	RecordID    uint64
	Date        string
}

// errorView feeds the validation error page template.
type errorView struct {
	Title    string
	Messages []string
}

// HandlePostForm processes POST /predict form submissions and renders an
// HTML result page.
func (h *FormHandler) HandlePostForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, http.StatusBadRequest, "Invalid form submission", []string{"the submitted form could not be read"})
		return
	}

	raw := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		raw[key] = r.PostForm.Get(key)
	}

	outcome, err := h.deps.Predict(r.Context(), raw)
	if err != nil {
		var verrs validate.Errors
		switch {
		case errors.As(err, &verrs):
			h.renderError(w, http.StatusBadRequest, "Please correct your answers", verrs.Messages())
		case errors.Is(err, scoring.ErrUnavailable):
			h.renderError(w, http.StatusServiceUnavailable, "Service temporarily unavailable",
				[]string{"the risk model is not loaded; please try again later"})
		default:
			logger.Get().Error(r.Context(), "form scoring failed", logger.Error(err))
			h.renderError(w, http.StatusInternalServerError, "Something went wrong",
				[]string{"an internal error occurred; please try again"})
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = h.resultTmpl.Execute(w, resultView{
		HighRisk:    outcome.Result,
		Probability: fmt.Sprintf("%.1f%%", outcome.Probability*100),
		RecordID:    outcome.RecordID,
		Date:        outcome.CreatedAt.Format("2006-01-02"),
	})
}

func (h *FormHandler) renderError(w http.ResponseWriter, status int, title string, messages []string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = h.errorTmpl.Execute(w, errorView{Title: title, Messages: messages})
}

const resultPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Diabetes Risk Result</title>
  <style>
    body { font-family: sans-serif; max-width: 640px; margin: 3em auto; padding: 0 1em; color: #222; }
    .verdict { padding: 1em 1.5em; border-radius: 8px; margin: 1.5em 0; }
    .high { background: #fdecea; border: 1px solid #d93025; }
    .low { background: #e6f4ea; border: 1px solid #188038; }
    .meta { color: #555; font-size: 0.9em; }
    a.button { display: inline-block; margin-top: 1em; padding: 0.5em 1.2em; border: 1px solid #888; border-radius: 6px; text-decoration: none; color: #222; }
    .disclaimer { margin-top: 2em; font-size: 0.8em; color: #777; }
  </style>
</head>
<body>
  <h1>Your result</h1>
  {{if .HighRisk}}
  <div class="verdict high">
    <h2>Elevated risk</h2>
    <p>The screening model estimates an elevated risk of type 2 diabetes ({{.Probability}}).</p>
  </div>
  {{else}}
  <div class="verdict low">
    <h2>Low risk</h2>
    <p>The screening model estimates a low risk of type 2 diabetes ({{.Probability}}).</p>
  </div>
  {{end}}
  <p class="meta">Report number {{.RecordID}} &middot; {{.Date}}</p>
  <a class="button" href="/download/{{.RecordID}}">Download report</a>
  <a class="button" href="/">Start over</a>
  <p class="disclaimer">Screening tool only. Not a medical diagnosis. Consult a physician.</p>
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; max-width: 640px; margin: 3em auto; padding: 0 1em; color: #222; }
    ul { background: #fdecea; border: 1px solid #d93025; border-radius: 8px; padding: 1em 2em; }
    a.button { display: inline-block; margin-top: 1em; padding: 0.5em 1.2em; border: 1px solid #888; border-radius: 6px; text-decoration: none; color: #222; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <ul>
    {{range .Messages}}<li>{{.}}</li>{{end}}
  </ul>
  <a class="button" href="/">Back to the form</a>
</body>
</html>
`
