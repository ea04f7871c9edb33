// Package audit appends security events to a write-only trail. The MFA
// service logs every enrollment, verification, and device or recovery
// lifecycle event here; nothing in the service ever reads them back.
package audit
