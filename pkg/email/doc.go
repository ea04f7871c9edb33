// Package email abstracts outbound transactional email behind the
// EmailSender interface, with a Postmark implementation for production
// and a logging DevSender for local development.
package email
