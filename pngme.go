// Copyright 2019-2020 The pngme Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pngme is a toolset for hiding messages in png images. It works
// on the chunk level of the png format: a message becomes a new ancillary
// chunk with a caller-chosen four-letter type, so the image itself stays
// intact and any png viewer keeps showing it as before.
package pngme

// Version of the pngme toolset
const Version = "0.1.0"
