// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of kvstored.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package connrt

import "errors"

var errClosed = errors.New("connrt: client closed")

var errRateLimited = errors.New("rate limit exceeded")
