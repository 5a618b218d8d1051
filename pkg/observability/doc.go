/*
Package observability turns tree mutation hooks into Prometheus metrics and structured logs.
*/
package observability
