/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import "github.com/humaidq/sprout/logging"

var appLogger = logging.Logger(logging.SourceApp)
var growthLogger = logging.Logger(logging.SourceGrowth)
var serverStdLogger = logging.StdLogger(logging.SourceWeb)
