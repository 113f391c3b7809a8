// Package tenant validates the tenant identifiers that select an application
// from the first segment of a request path.
//
// A tenant identifier is an opaque string. It is accepted when it is non-empty
// and fully matches the configured allow-pattern (DefaultPattern unless
// overridden). The identifier "api" is reserved: it names the built-in API
// service and is routed before validation or cache lookup ever happen.
//
//	v, err := tenant.NewValidator(tenant.DefaultPattern)
//	if err != nil {
//	    return err
//	}
//	v.Valid("demo1")  // true
//	v.Valid("a/b")    // false
//	v.Valid("")       // false
package tenant
