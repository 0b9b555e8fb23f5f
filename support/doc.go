// Package support defines the customer-support domain: the tools gated on
// the SupportContext, their Authorized/Denied outcomes, and the catalog of
// four agents (triage, billing, technical, general) that share one model.
//
// Tool functions are plain Go functions of (SupportContext, argument) so they
// can be called without a model; the New*Tool constructors expose them to
// agents through tool.FunctionTool.
package support
