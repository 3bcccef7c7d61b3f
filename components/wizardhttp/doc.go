// Package wizardhttp exposes survey wizard sessions over net/http.
//
// Each browser session is identified by a cookie and owns one wizard. Field
// edits, criteria edits and navigation are JSON endpoints under the survey
// route; the scenario listing and the OpenAPI document are served alongside.
// Session snapshots go to the configured store so a restarted server resumes
// them.
package wizardhttp
