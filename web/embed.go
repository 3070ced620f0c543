// Package web embeds the dashboard templates and static assets.
package web

import "embed"

// TemplatesFS embeds the HTML templates parsed at server start.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the style sheet.
//
//go:embed static/*
var StaticFS embed.FS
