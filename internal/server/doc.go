// Package server exposes a workspace session over HTTP for a local editor.
//
// All state belongs to one session; the server is meant for a single user
// on a single machine. Routes live under /api, uploads are multipart forms
// with a "file" field, and downloads carry a Content-Disposition filename.
package server
