// Package builder turns stored application definitions into live HTTP
// handlers.
//
// A definition is a small YAML envelope:
//
//	title: Sales dashboard
//	layout: |
//	  <html><body><h1>Sales</h1></body></html>
//	script: |
//	  function serve(req)
//	    if req.path == "/" then
//	      return app.layout
//	    end
//	    return { status = 404, body = "no such page" }
//	  end
//
// The envelope may be stored brotli-compressed (store.EncodingBrotli).
//
// Build compiles the script into a sandboxed Lua state and returns an *App
// that serves requests whose path has already had the tenant segment
// removed. The script sees:
//
//   - app.title, app.layout, app.prefix, app.tenant
//   - dashgate.log(message [, level])
//   - a global function serve(req) it may define, where req carries method,
//     path, query, headers, body, prefix and tenant
//
// serve returns either a string (sent as a 200 body) or a table with
// status, headers and body fields. When the script does not define serve,
// GET / answers with the layout and every other path is 404.
//
// The io, os, debug and package libraries are not opened, and load,
// loadfile, dofile, loadstring and require are removed from the globals.
package builder
