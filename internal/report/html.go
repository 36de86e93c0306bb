package report

import (
	"bytes"
	"html/template"

	"dubline/internal/config"
	"dubline/internal/domain"
	"dubline/internal/workload"
)

var workloadTmpl = template.Must(template.New("workload").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Speaker Workload Analysis Report</title>
<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50">
<nav class="bg-gradient-to-r from-blue-600 to-indigo-700 shadow-lg mb-8">
  <div class="max-w-7xl mx-auto px-4 flex space-x-4 py-4">
    <a href="speaker_workload_report.html" class="bg-blue-700 text-white px-4 py-2 rounded-md text-sm font-medium">Speaker Workload</a>
    <a href="completed_projects_report.html" class="text-blue-100 hover:bg-blue-600 hover:text-white px-4 py-2 rounded-md text-sm font-medium">Completed Projects</a>
  </div>
</nav>
<div class="max-w-7xl mx-auto px-4 pb-12">
  <h1 class="text-3xl font-bold text-gray-900 mb-2">Speaker Workload Analysis</h1>
  <p class="text-gray-500 mb-8">Generated on {{.Generated}}</p>

  {{if .Warnings}}
  <div class="bg-amber-50 border border-amber-200 rounded-lg p-4 mb-8">
    <h2 class="text-lg font-semibold text-amber-800 mb-2">Warnings</h2>
    <ul class="list-disc list-inside text-amber-700">
      {{range .Warnings}}<li>{{.}}</li>{{end}}
    </ul>
  </div>
  {{end}}

  <div class="bg-white rounded-lg shadow overflow-hidden mb-8">
    <table class="min-w-full divide-y divide-gray-200">
      <thead class="bg-gray-100">
        <tr>
          <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Speaker</th>
          <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Voice</th>
          <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Availability</th>
          <th class="px-4 py-3 text-right text-xs font-medium text-gray-500 uppercase">Total</th>
          <th class="px-4 py-3 text-right text-xs font-medium text-gray-500 uppercase">Completed</th>
          <th class="px-4 py-3 text-right text-xs font-medium text-gray-500 uppercase">Pending</th>
          <th class="px-4 py-3 text-right text-xs font-medium text-gray-500 uppercase">Completion</th>
          <th class="px-4 py-3 text-left text-xs font-medium text-gray-500 uppercase">Rating</th>
        </tr>
      </thead>
      <tbody class="divide-y divide-gray-200">
        {{range .Speakers}}
        <tr class="{{if .Dimmed}}opacity-50{{end}}">
          <td class="px-4 py-3 font-medium text-gray-900">{{.Name}}</td>
          <td class="px-4 py-3 text-gray-600">{{.Voice}}</td>
          <td class="px-4 py-3 text-gray-600">{{.Availability}}</td>
          <td class="px-4 py-3 text-right">{{.Total}}</td>
          <td class="px-4 py-3 text-right">{{.Completed}}</td>
          <td class="px-4 py-3 text-right">{{.Pending}}</td>
          <td class="px-4 py-3 text-right">{{printf "%.1f" .Rate}}%</td>
          <td class="px-4 py-3">{{.Rating}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </div>

  <div class="bg-white rounded-lg shadow p-6">
    <h2 class="text-lg font-semibold text-gray-900 mb-2">Recommendations</h2>
    <ul class="list-disc list-inside text-gray-700">
      {{range .Recommendations}}<li>{{.}}</li>{{end}}
    </ul>
  </div>
</div>
</body>
</html>
`))

var completedTmpl = template.Must(template.New("completed").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Completed Projects Report</title>
<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-50">
<nav class="bg-gradient-to-r from-blue-600 to-indigo-700 shadow-lg mb-8">
  <div class="max-w-7xl mx-auto px-4 flex space-x-4 py-4">
    <a href="speaker_workload_report.html" class="text-blue-100 hover:bg-blue-600 hover:text-white px-4 py-2 rounded-md text-sm font-medium">Speaker Workload</a>
    <a href="completed_projects_report.html" class="bg-blue-700 text-white px-4 py-2 rounded-md text-sm font-medium">Completed Projects</a>
  </div>
</nav>
<div class="max-w-7xl mx-auto px-4 pb-12">
  <h1 class="text-3xl font-bold text-gray-900 mb-2">Completed Projects</h1>
  <p class="text-gray-500 mb-8">Generated on {{.Generated}} &middot; {{len .Projects}} projects</p>

  <div class="space-y-6">
    {{range .Projects}}
    <div class="bg-white rounded-lg shadow p-6">
      <h2 class="text-xl font-semibold text-gray-900 mb-2">
        {{if .URL}}<a href="{{.URL}}" class="hover:text-blue-600">{{.Name}}</a>{{else}}{{.Name}}{{end}}
      </h2>
      <div class="text-sm text-gray-500 mb-3">
        {{if .Due}}Due {{.Due.Format "2006-01-02"}}{{end}}
        {{if .LastActivity}}&middot; Last activity {{.LastActivity.Format "2006-01-02"}}{{end}}
      </div>
      {{if .Members}}
      <div class="flex flex-wrap gap-2 mb-3">
        {{range .Members}}<span class="bg-blue-100 text-blue-800 text-xs font-medium px-2 py-1 rounded">{{.Name}}</span>{{end}}
      </div>
      {{end}}
      {{if .DocLinks}}
      <ul class="list-disc list-inside text-sm text-blue-600">
        {{range .DocLinks}}<li><a href="{{.}}" class="hover:underline">{{.}}</a></li>{{end}}
      </ul>
      {{end}}
    </div>
    {{end}}
  </div>
</div>
</body>
</html>
`))

type workloadRow struct {
	Name         string
	Voice        string
	Availability string
	Total        int
	Completed    int
	Pending      int
	Rate         float64
	Rating       string
	Dimmed       bool
}

func workloadHTML(a workload.Analysis, profiles map[string]config.SpeakerProfile) ([]byte, error) {
	var rows []workloadRow
	for _, s := range a.Speakers {
		row := workloadRow{
			Name:      s.Name,
			Total:     s.Total(),
			Completed: s.Completed,
			Pending:   s.Pending,
			Rate:      s.CompletionRate(),
			Rating:    s.Rating(),
		}
		if p, ok := profiles[s.Name]; ok {
			row.Voice = p.Voice
			row.Availability = p.Availability
			row.Dimmed = restricted(p)
		}
		rows = append(rows, row)
	}
	var buf bytes.Buffer
	err := workloadTmpl.Execute(&buf, map[string]any{
		"Generated":       fmtTimestamp(a.GeneratedAt),
		"Warnings":        a.Warnings,
		"Recommendations": a.Recommendations,
		"Speakers":        rows,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func completedHTML(projects []domain.Project, generated string) ([]byte, error) {
	var buf bytes.Buffer
	err := completedTmpl.Execute(&buf, map[string]any{
		"Generated": generated,
		"Projects":  projects,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
