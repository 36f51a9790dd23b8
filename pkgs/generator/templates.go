package generator

// Template components of a generated unit. Pool and query initialisers are
// prebuilt strings so the templates only lay out declarations.

const headerTemplate = `{{define "header"}}// Code generated by ecsgen. DO NOT EDIT.
{{- if .Source}}
// source: {{.Source}}
{{- end}}
{{- if .Digest}}
// ecsgen:digest {{.Digest}}
{{- end}}
{{end}}`

const packageTemplate = `{{define "package"}}package {{.PackageName}}{{end}}`

const importsTemplate = `{{define "imports"}}
import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{end}}`

const stateTemplate = `{{define "state"}}
// {{.StateType}} holds the storage handles and queries of {{.System}}.
// {{.System}} embeds it.
type {{.StateType}} struct {
{{- range .Pools}}
	{{.Field}} *{{$.Runtime}}.Pool[{{.Type}}]
{{- end}}
{{- range .Queries}}
	{{.Field}} *{{$.Runtime}}.Query
{{- end}}
}
{{end}}`

const initTemplate = `{{define "init"}}
// OnInit resolves the storage handles and queries used by UpdateGenerated.
func ({{.Recv}} *{{.System}}) OnInit(world *{{.Runtime}}.World) {
{{- range .Pools}}
	{{$.Field .Field}} = {{.Init}}
{{- end}}
{{- range .Queries}}
	{{$.Field .Field}} = {{.Init}}
{{- end}}
}
{{end}}`

const updateTemplate = `{{define "update"}}
// UpdateGenerated is Update with every {{.Each}} call expanded into loops.
func ({{.Recv}} *{{.System}}) UpdateGenerated() {
{{- if .Body}}
{{.Body}}
{{- end}}
}

func ({{.Recv}} *{{.System}}) UpdateN() {
	{{.Recv}}.UpdateGenerated()
}
{{end}}`

const masterTemplate = `{{define "main"}}{{template "header" .}}
{{template "package" .}}
{{template "imports" .}}{{template "state" .}}{{template "init" .}}{{template "update" .}}{{end}}`
