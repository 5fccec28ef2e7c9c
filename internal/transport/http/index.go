package httptransport

import (
	"html/template"
	"net/http"

	"image-job-service/internal/entity"
)

var formats = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

type indexData struct {
	Prompt  string
	Format  string
	Count   int
	Formats []string
	Error   string
	JobID   string
	History []entity.HistoryEntry
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Image jobs</title></head>
<body>
<h1>Generate images</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/" enctype="multipart/form-data">
  <textarea name="prompt" rows="4" cols="60" placeholder="Describe the image (at least 10 characters)">{{.Prompt}}</textarea><br>
  <select name="format">{{$f := .Format}}{{range .Formats}}<option{{if eq . $f}} selected{{end}}>{{.}}</option>{{end}}</select>
  <input type="number" name="count" min="1" max="4" value="{{.Count}}">
  <input type="file" name="references" accept="image/*" multiple>
  <input type="hidden" name="stored_refs" value="[]">
  <button type="submit">Generate</button>
</form>
{{if .JobID}}
<div id="job" data-id="{{.JobID}}"><p>Job <code>{{.JobID}}</code>: <span id="job-status">queued</span></p><div id="job-images"></div></div>
<script>
(function () {
  var id = document.getElementById("job").dataset.id;
  function poll() {
    fetch("/status/" + id).then(function (r) { return r.json(); }).then(function (s) {
      document.getElementById("job-status").textContent = s.error ? s.status + ": " + s.error : s.status;
      if (s.status === "done") {
        var box = document.getElementById("job-images");
        s.images.forEach(function (src) { var img = new Image(); img.src = src; img.width = 256; box.appendChild(img); });
      } else if (s.status === "queued" || s.status === "processing") {
        setTimeout(poll, 1500);
      }
    });
  }
  poll();
})();
</script>
{{end}}
<h2>History</h2>
<ul>
{{range .History}}<li>{{.Prompt}} ({{.Format}}, {{len .Images}} image(s))</li>{{else}}<li>No completed jobs yet.</li>{{end}}
</ul>
</body>
</html>
`))

// Index renders the form and, on POST, submits the job and renders its id
// for the page to poll.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := indexData{Format: formats[0], Count: 1, Formats: formats}
	code := http.StatusOK

	if r.Method == http.MethodPost {
		req, err := h.parseFormSubmission(r)
		if err == nil {
			data.Prompt, data.Format, data.Count = req.Prompt, req.Format, entity.ClampCount(req.Count)
			id, submitErr := h.jobSvc.Submit(r.Context(), req)
			if submitErr == nil {
				data.JobID = id.String()
			}
			err = submitErr
		}
		if err != nil {
			code, data.Error = submitFailure(err)
			if code == http.StatusInternalServerError {
				h.log.Error().Err(err).Msg("submit job")
			}
		}
	}

	data.History = h.jobSvc.History(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := indexTmpl.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("render index")
	}
}
