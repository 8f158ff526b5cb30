package http

// VerifySlackSignature is exported for testing
var VerifySlackSignature = verifySlackSignature

// SlackSignatureMiddlewareWithClock is exported for testing
var SlackSignatureMiddlewareWithClock = slackSignatureMiddleware
