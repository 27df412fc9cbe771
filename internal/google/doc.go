// Package google owns the Google OAuth2 credential lifecycle.
//
// It provides the token store (a single persisted credential record), the
// authorization manager (silent refresh when stored refresh material is
// usable, otherwise an interactive authorization-code flow through a
// transient loopback callback listener), and the fixed scope set the
// Gmail tools require.
package google
