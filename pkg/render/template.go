package render

const reportTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Report Lens</title>
  <style>
    :root { color-scheme: light; --bg: #f3f6fb; --surface: #ffffff; --border: #d7dee9; }
    body { font-family: system-ui, sans-serif; margin: 0; background: var(--bg); color: #1c2733; }
    header { background: var(--surface); border-bottom: 1px solid var(--border); padding: 16px 24px; }
    header h1 { margin: 0 0 4px; font-size: 20px; }
    header .meta { color: #5b6b7c; font-size: 13px; }
    main { padding: 24px; }
    .category { background: var(--surface); border: 1px solid var(--border); border-radius: 8px;
                padding: 12px 16px; margin-bottom: 12px; display: flex; justify-content: space-between; }
    .score { font-weight: 600; }
    .score.good { color: #0a7d43; }
    .score.average { color: #a45d00; }
    .score.poor { color: #b42318; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Subject}}</h1>
    <div class="meta">captured {{.When}} &middot; producer version {{.Version}}</div>
  </header>
  <main>
    {{range .AllCategories}}
    <div class="category" id="category-{{.ID}}">
      <span>{{.Label}}</span>
      <span class="score {{if ge .Percent 90}}good{{else if ge .Percent 50}}average{{else}}poor{{end}}">{{.Percent}}</span>
    </div>
    {{end}}
  </main>
</body>
</html>
`
