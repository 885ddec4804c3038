/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package uri normalises a raw request-line URI into its component parts.
//
// Parse accepts either origin-form ("/a/b?q") or absolute-form
// ("http://host/a/b?q") input, since the parser hands either shape through
// depending on whether the peer is talking to this engine as a plain server
// or as a proxy. The returned URI carries the split Scheme/Host/Path/Query
// plus a derived Ext (the path's file extension, if any) and PathInfo — a
// dot-segment-resolved form of Path suitable for route matching without
// walking above the root.
//
// Normalize is the inverse of Parse: calling Parse on a URI's own Normalize
// output reproduces an equivalent URI, which downstream code relies on when
// re-emitting a request line for a proxied or redirected request.
package uri
