// Package catalog builds and persists the remote command catalog of a
// device: a name to raw-value mapping merged from the device's own
// command list and an optional legacy IRCC source, written once as a
// UTF-8 text file. Catalog files already on disk are never rewritten.
package catalog
