// Package middleware 提供 HTTP 中间件：身份认证、日志、监控、限流、熔断、缓存等.
package middleware
