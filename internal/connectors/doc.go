// Package connectors provides implementations of the Connector interface
// for the supported signal sources. Each connector knows how to query one
// provider (Twitter, NewsAPI, GitHub, YouTube) and map its items into the
// canonical Signal form.
//
// Connectors are registered with the Factory at startup.
package connectors
