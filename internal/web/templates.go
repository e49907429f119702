// internal/web/templates.go
//
// Server-rendered pages.
//
// The edge serves plain, dependency-free HTML: login and recovery forms,
// the referral fallback interstitial, and the guarded section shells.  One
// parsed template set, shared and read-only after init.

package web

import "html/template"

var tmpl = template.Must(template.New("edge").Parse(`
{{define "head"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · Digital Madrasa</title>
<style>
 body{font-family:system-ui,sans-serif;max-width:28rem;margin:4rem auto;padding:0 1rem;color:#222}
 form{display:grid;gap:.75rem}
 input{padding:.5rem;font-size:1rem}
 button{padding:.6rem;font-size:1rem;cursor:pointer}
 .error{color:#b00020;background:#fdecea;padding:.5rem .75rem;border-radius:4px}
 .notice{color:#1b5e20;background:#e8f5e9;padding:.5rem .75rem;border-radius:4px}
 table{border-collapse:collapse;width:100%}
 th,td{text-align:left;padding:.3rem .5rem;border-bottom:1px solid #ddd}
 a{color:#1a4f9c}
</style>{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}};url={{.Target}}">{{end}}
</head><body><h1>{{.Title}}</h1>{{end}}

{{define "foot"}}</body></html>{{end}}

{{define "login"}}{{template "head" .}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
<form method="post" action="{{.Action}}">
  <input type="hidden" name="redirect" value="{{.Redirect}}">
  <input name="email" type="text" placeholder="Email" value="{{.Email}}">
  <input name="password" type="password" placeholder="Password">
  <button type="submit">Sign in</button>
</form>
{{if not .IsAdmin}}<p><a href="/forgot-password">Forgot your password?</a></p>{{end}}
{{template "foot" .}}{{end}}

{{define "forgot"}}{{template "head" .}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{if .Sent}}<p class="notice">If that address is registered, a reset link is on its way.</p>
<p><a href="/login">Back to login</a></p>
{{else}}<form method="post" action="/forgot-password">
  <input name="email" type="text" placeholder="Email" value="{{.Email}}">
  <button type="submit">Send reset link</button>
</form>
<p><a href="/login">Back to login</a></p>{{end}}
{{template "foot" .}}{{end}}

{{define "reset"}}{{template "head" .}}
{{with .Error}}<p class="error">{{.}}</p>{{end}}
{{if .Done}}<p class="notice">Password updated.  You can sign in now.</p>
<p><a href="/login">Back to login</a></p>
{{else}}<form method="post" action="/reset-password">
  <input type="hidden" name="token" value="{{.Token}}">
  <input name="password" type="password" placeholder="New password">
  <input name="confirm" type="password" placeholder="Confirm new password">
  <button type="submit">Set new password</button>
</form>{{end}}
{{template "foot" .}}{{end}}

{{define "referral_fallback"}}{{template "head" .}}
<p class="error">{{.Message}}</p>
<p>Taking you to enrollment…  <a href="{{.Target}}">Continue now</a></p>
{{template "foot" .}}{{end}}

{{define "clicks"}}{{template "head" .}}
<p>Latest recorded clicks for code <strong>{{.Code}}</strong>.</p>
{{if .Clicks}}<table>
<tr><th>When</th><th>Country</th><th>City</th><th>Browser</th><th>Device</th><th>Bot</th></tr>
{{range .Clicks}}<tr><td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td><td>{{.CountryISO}}</td><td>{{.City}}</td><td>{{.Browser}}</td><td>{{.Device}}</td><td>{{if .Bot}}yes{{else}}no{{end}}</td></tr>
{{end}}</table>
{{else}}<p>No clicks recorded for this code yet.</p>{{end}}
<p><a href="/admin">Back office</a></p>
{{template "foot" .}}{{end}}

{{define "section"}}{{template "head" .}}
<p>Welcome back, {{.Name}}.</p>
<form method="post" action="{{.LogoutAction}}"><button type="submit">Log out</button></form>
{{template "foot" .}}{{end}}

{{define "home"}}{{template "head" .}}
<p>Learn, teach, and earn with Digital Madrasa.</p>
<p><a href="/login">Student login</a> · <a href="/admin-login">Admin</a></p>
{{template "foot" .}}{{end}}
`))
