// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protomsg_test

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"buf.build/go/protomsg"
	"buf.build/go/protomsg/internal/examples"
	"buf.build/go/protomsg/internal/testdata"
)

func Example() {
	// Compile a type for your message. This operation is quite slow, so it
	// should be cached, like regexp.Compile.
	ty, err := protomsg.CompileFileDescriptorSet(examples.WeatherSchema(), "example.weather.v1.WeatherReport")
	if err != nil {
		panic(err)
	}

	// Unmarshal some raw Protobuf-encoded data.
	msg, err := ty.Unmarshal(examples.WeatherReport())
	if err != nil {
		panic(err)
	}

	fmt.Println(msg.Get(examples.Region))
	for i := range msg.Len(examples.WeatherStations) {
		station := msg.Index(examples.WeatherStations, i).(*protomsg.Message)

		fmt.Println("station:", station.Get(examples.Station))
		fmt.Println("frequency:", station.Get(examples.Frequency))
		fmt.Println("temperature:", station.Get(examples.Temperature))
		fmt.Println("pressure:", station.Get(examples.Pressure))
		fmt.Println("wind_speed:", station.Get(examples.WindSpeed))
		fmt.Println("conditions:", station.Get(examples.Conditions))
	}

	// Output:
	// Seattle
	// station: KAD93
	// frequency: 162.525
	// temperature: 11.3
	// pressure: 30.08
	// wind_speed: 2.3
	// conditions: 3
	// station: KHB60
	// frequency: 162.55
	// temperature: 13.7
	// pressure: 28.09
	// wind_speed: 1.9
	// conditions: 3
}

func Example_builder() {
	ty, err := protomsg.CompileFileDescriptorSet(examples.WeatherSchema(), "example.weather.v1.WeatherReport")
	if err != nil {
		panic(err)
	}

	// Start from an existing message and change it.
	msg, err := ty.Unmarshal(examples.WeatherReport())
	if err != nil {
		panic(err)
	}
	b := msg.ToBuilder()
	b.Set(examples.Region, "Tacoma")
	b.Set(examples.WeatherStations, []any{msg.Index(examples.WeatherStations, 1)})
	tacoma := b.Build()

	// The original message is unchanged.
	fmt.Println(msg.Get(examples.Region), msg.Len(examples.WeatherStations))
	fmt.Println(tacoma.Get(examples.Region), tacoma.Len(examples.WeatherStations))

	// Output:
	// Seattle 2
	// Tacoma 1
}

func Example_extensions() {
	ty, err := protomsg.CompileFileDescriptorSet(testdata.Schema(), "protomsg.test.Scalars")
	if err != nil {
		panic(err)
	}
	ext, err := protomsg.NewExtension(testdata.Extension("protomsg.test.ext_repeated_int32"))
	if err != nil {
		panic(err)
	}

	b := ty.NewBuilder()
	b.AddExtension(ext, int32(1))
	b.AddExtension(ext, int32(2))
	data := b.Build().Marshal()

	// Without a registry, extensions are kept as unknown fields.
	opaque, err := ty.Unmarshal(data, protomsg.WithRegistry(protomsg.EmptyRegistry()))
	if err != nil {
		panic(err)
	}
	fmt.Println(opaque.ExtensionCount(ext), bytes.Equal(opaque.Marshal(), data))

	// With one, they are decoded.
	registry := protomsg.NewExtensionRegistry()
	if err := registry.Register(ext); err != nil {
		panic(err)
	}
	registry.Freeze()

	msg, err := ty.Unmarshal(data, protomsg.WithRegistry(registry))
	if err != nil {
		panic(err)
	}
	fmt.Println(msg.ExtensionCount(ext), msg.GetExtensionAt(ext, 0), msg.GetExtensionAt(ext, 1))

	// Output:
	// 0 true
	// 2 1 2
}

func Example_delimited() {
	ty, err := protomsg.CompileFileDescriptorSet(examples.WeatherSchema(), "example.weather.v1.WeatherReport")
	if err != nil {
		panic(err)
	}

	var stream []byte
	for _, region := range []string{"Seattle", "Portland", "Spokane"} {
		b := ty.NewBuilder()
		b.Set(examples.Region, region)
		stream = b.Build().AppendDelimited(stream)
	}

	r := bufio.NewReader(bytes.NewReader(stream))
	for {
		b := ty.NewBuilder()
		err := b.MergeDelimitedFrom(r)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			panic(err)
		}
		fmt.Println(b.Get(examples.Region))
	}

	// Output:
	// Seattle
	// Portland
	// Spokane
}
